package service

import (
	"context"

	"notes-api/internal/model"
)

// NoteService интерфейс для бизнес-логики работы с заметками.
// Отсутствие заметки сообщается флагом found, а не ошибкой.
type NoteService interface {
	// List возвращает все заметки по дате обновления (из кэша, если он жив)
	List(ctx context.Context) ([]model.Note, error)

	// Get возвращает заметку по её ID; found == false, если заметки нет
	Get(ctx context.Context, id string) (note model.Note, found bool, err error)

	// Create создает новую заметку; content == nil означает отсутствие содержимого
	Create(ctx context.Context, title string, content *string) (model.Note, error)

	// Update полностью заменяет заголовок и содержимое заметки
	Update(ctx context.Context, id, title string, content *string) (note model.Note, found bool, err error)

	// Delete удаляет заметку по ID; found == false, если заметки нет
	Delete(ctx context.Context, id string) (found bool, err error)

	// Search ищет заметки по вхождению в заголовок
	Search(ctx context.Context, term string) ([]model.Note, error)

	// ListPaged возвращает страницу заметок с фильтрами и сортировкой
	ListPaged(ctx context.Context, req model.PagedRequest) (model.PagedResult, error)
}
