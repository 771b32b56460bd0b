package notes

import (
	"context"
	"errors"
	"strings"
	"time"

	"notes-api/internal/cache"
	"notes-api/internal/model"
	"notes-api/internal/query"
	"notes-api/internal/repository"
	svc "notes-api/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ svc.NoteService = (*service)(nil)

type service struct {
	noteRepository repository.NoteRepository
	cache          cache.NotesCache
	log            zerolog.Logger
	now            func() time.Time
	newID          func() string
}

// Option настройка сервиса
type Option func(*service)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDGenerator подменяет генератор идентификаторов
func WithIDGenerator(newID func() string) Option {
	return func(s *service) { s.newID = newID }
}

// WithLogger задает логгер сервиса
func WithLogger(log zerolog.Logger) Option {
	return func(s *service) { s.log = log }
}

// NewNoteService создает новый экземпляр сервиса для работы с заметками.
// nil-кэш заменяется на cache.Noop.
func NewNoteService(noteRepository repository.NoteRepository, notesCache cache.NotesCache, opts ...Option) svc.NoteService {
	if notesCache == nil {
		notesCache = cache.Noop{}
	}
	s := &service{
		noteRepository: noteRepository,
		cache:          notesCache,
		log:            zerolog.Nop(),
		now:            time.Now,
		newID:          func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List возвращает закэшированный или свежий полный список
func (s *service) List(ctx context.Context) ([]model.Note, error) {
	if notes, ok := s.cache.Get(ctx); ok {
		s.log.Info().Int("count", len(notes)).Msg("Returning notes from cache")
		return notes, nil
	}

	gen := s.cache.Generation(ctx)
	notes, err := s.noteRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache.Set(ctx, gen, notes) {
		s.log.Info().Int("count", len(notes)).Msg("Cached notes listing")
	} else {
		// Пока читали хранилище, кэш был инвалидирован записью
		s.log.Debug().Int("count", len(notes)).Msg("Skipped caching stale notes listing")
	}

	return notes, nil
}

// Get возвращает заметку по её ID
func (s *service) Get(ctx context.Context, id string) (model.Note, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Note{}, false, nil
	}

	note, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNoteNotFound) {
			return model.Note{}, false, nil
		}
		return model.Note{}, false, err
	}

	return note, true, nil
}

// Create создает новую заметку с указанными title и content
func (s *service) Create(ctx context.Context, title string, content *string) (model.Note, error) {
	if err := validateInput(title, content); err != nil {
		return model.Note{}, err
	}
	title, content = model.Normalize(title, content)

	now := s.timestamp()
	note := model.Note{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	createdNote, err := s.noteRepository.Create(ctx, note)
	if err != nil {
		return model.Note{}, err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("note_id", createdNote.ID).Msg("Created note and cleared cache")

	return createdNote, nil
}

// Update полностью заменяет заголовок и содержимое заметки
func (s *service) Update(ctx context.Context, id, title string, content *string) (model.Note, bool, error) {
	if err := validateInput(title, content); err != nil {
		return model.Note{}, false, err
	}
	title, content = model.Normalize(title, content)

	existingNote, found, err := s.Get(ctx, id)
	if err != nil || !found {
		return model.Note{}, found, err
	}

	existingNote.Title = title
	existingNote.Content = content
	existingNote.UpdatedAt = s.nextUpdate(existingNote.UpdatedAt)

	updatedNote, err := s.noteRepository.Update(ctx, existingNote)
	if err != nil {
		// Заметку могли удалить между чтением и записью
		if errors.Is(err, model.ErrNoteNotFound) {
			return model.Note{}, false, nil
		}
		return model.Note{}, false, err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("note_id", updatedNote.ID).Msg("Updated note and cleared cache")

	return updatedNote, true, nil
}

// Delete удаляет заметку по ID
func (s *service) Delete(ctx context.Context, id string) (bool, error) {
	note, found, err := s.Get(ctx, id)
	if err != nil || !found {
		return false, err
	}

	if err := s.noteRepository.Delete(ctx, note.ID); err != nil {
		if errors.Is(err, model.ErrNoteNotFound) {
			return false, nil
		}
		return false, err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("note_id", note.ID).Msg("Deleted note and cleared cache")

	return true, nil
}

// Search ищет заметки по вхождению term в заголовок, минуя кэш
func (s *service) Search(ctx context.Context, term string) ([]model.Note, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, model.NewValidationError("Search term is required")
	}

	notes, _, err := s.noteRepository.Query(ctx, query.TitleSearch(term))
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// ListPaged возвращает страницу заметок, минуя кэш
func (s *service) ListPaged(ctx context.Context, req model.PagedRequest) (model.PagedResult, error) {
	req = req.Sanitize()
	if err := req.Validate(); err != nil {
		return model.PagedResult{}, err
	}

	plan := query.Build(req)
	items, total, err := s.noteRepository.Query(ctx, plan)
	if err != nil {
		return model.PagedResult{}, err
	}

	return model.PagedResult{
		Items:          items,
		TotalCount:     total,
		Page:           req.Page,
		PageSize:       req.PageSize,
		Search:         req.Search,
		SortBy:         plan.Order.Field,
		SortDescending: plan.Order.Descending,
	}, nil
}

// validateInput проверяет сырые значения до обрезки пробелов
func validateInput(title string, content *string) error {
	errs := model.ValidateTitle(title)
	errs = append(errs, model.ValidateContent(content)...)
	if len(errs) > 0 {
		return model.NewValidationError(errs...)
	}
	return nil
}

// timestamp текущее время в UTC с точностью до микросекунд
func (s *service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextUpdate гарантирует строгий рост даты обновления даже при грубых часах
func (s *service) nextUpdate(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}
