package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"notes-api/internal/model"
	"notes-api/internal/query"
	"notes-api/internal/repository"

	"github.com/google/uuid"
)

var _ repository.NoteRepository = (*repo)(nil)

type repo struct {
	mu    sync.RWMutex
	notes map[string]model.Note
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map
func NewRepository() repository.NoteRepository {
	return &repo{
		notes: make(map[string]model.Note),
	}
}

// Create сохраняет новую заметку; ID и временные метки выставляются, если не заданы
func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}

	r.notes[note.ID] = note.Clone()

	return note, nil
}

// GetByID возвращает заметку по её ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	if !exists {
		return model.Note{}, model.ErrNoteNotFound
	}

	return note.Clone(), nil
}

// List возвращает все заметки по дате обновления, новые первыми
func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	notes, _, err := r.Query(ctx, query.All())
	return notes, err
}

// Query фильтрует, сортирует и нарезает заметки в памяти по плану
func (r *repo) Query(ctx context.Context, plan query.Plan) ([]model.Note, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	matched := make([]model.Note, 0, len(r.notes))
	for _, note := range r.notes {
		if plan.Matches(note) {
			matched = append(matched, note.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, plan.Compare)

	start, end := plan.Window(len(matched))
	return matched[start:end], len(matched), nil
}

// Update заменяет существующую заметку
func (r *repo) Update(ctx context.Context, note model.Note) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.notes[note.ID]
	if !exists {
		return model.Note{}, model.ErrNoteNotFound
	}

	// Дата создания неизменна
	note.CreatedAt = existing.CreatedAt
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = time.Now().UTC()
	}

	r.notes[note.ID] = note.Clone()

	return note, nil
}

// Delete удаляет заметку по ID
func (r *repo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[id]; !exists {
		return model.ErrNoteNotFound
	}

	delete(r.notes, id)

	return nil
}

// Ping всегда успешен для хранилища в памяти
func (r *repo) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Seed добавляет начальные заметки, которых еще нет
func (r *repo) Seed(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, note := range repository.SeedNotes {
		if _, ok := r.notes[note.ID]; ok {
			continue
		}
		r.notes[note.ID] = note.Clone()
		inserted++
	}
	return inserted, nil
}
