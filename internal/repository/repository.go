package repository

import (
	"context"

	"notes-api/internal/model"
	"notes-api/internal/query"
)

// NoteRepository интерфейс для работы с заметками в хранилище.
// Каждая изменяющая операция затрагивает одну запись и выполняется атомарно.
type NoteRepository interface {
	// Create сохраняет новую заметку и возвращает сохраненную заметку
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// GetByID возвращает заметку по её ID или model.ErrNoteNotFound
	GetByID(ctx context.Context, id string) (model.Note, error)

	// List возвращает все заметки, отсортированные по дате обновления (новые первыми)
	List(ctx context.Context) ([]model.Note, error)

	// Query выполняет план выборки и возвращает страницу и общее число совпадений
	Query(ctx context.Context, plan query.Plan) ([]model.Note, int, error)

	// Update заменяет существующую заметку и возвращает обновленную заметку
	Update(ctx context.Context, note model.Note) (model.Note, error)

	// Delete удаляет заметку по ID
	Delete(ctx context.Context, id string) error

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}

// Seeder хранилище, умеющее заполнить себя начальными заметками (SeedNotes)
type Seeder interface {
	// Seed вставляет отсутствующие начальные заметки и возвращает их количество
	Seed(ctx context.Context) (int, error)
}
