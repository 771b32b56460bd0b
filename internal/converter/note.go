package converter

import (
	"time"

	"notes-api/internal/model"
)

// NoteDTO представление заметки в JSON API
type NoteDTO struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      *string   `json:"content,omitempty"`
	CreatedAtUTC time.Time `json:"createdAtUtc"`
	UpdatedAtUTC time.Time `json:"updatedAtUtc"`
}

// CreateNoteRequest тело запроса на создание заметки
type CreateNoteRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// UpdateNoteRequest тело запроса на обновление заметки
type UpdateNoteRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
}

// PagedNotesDTO страница заметок с индикаторами навигации
type PagedNotesDTO struct {
	Items           []NoteDTO `json:"items"`
	TotalCount      int       `json:"totalCount"`
	Page            int       `json:"page"`
	PageSize        int       `json:"pageSize"`
	Search          *string   `json:"search"`
	SortBy          string    `json:"sortBy"`
	SortDescending  bool      `json:"sortDescending"`
	TotalPages      int       `json:"totalPages"`
	HasNextPage     bool      `json:"hasNextPage"`
	HasPreviousPage bool      `json:"hasPreviousPage"`
	NextPage        *int      `json:"nextPage"`
	PreviousPage    *int      `json:"previousPage"`
	FirstItemIndex  int       `json:"firstItemIndex"`
	LastItemIndex   int       `json:"lastItemIndex"`
}

// ModelToDTO конвертирует domain модель Note в DTO
func ModelToDTO(note model.Note) NoteDTO {
	dto := NoteDTO{
		ID:           note.ID,
		Title:        note.Title,
		CreatedAtUTC: note.CreatedAt.UTC(),
		UpdatedAtUTC: note.UpdatedAt.UTC(),
	}
	if note.Content != nil {
		c := *note.Content
		dto.Content = &c
	}
	return dto
}

// ModelsToDTOs конвертирует слайс domain моделей; nil превращается в пустой слайс,
// чтобы в JSON был [] а не null
func ModelsToDTOs(notes []model.Note) []NoteDTO {
	dtos := make([]NoteDTO, len(notes))
	for i, note := range notes {
		dtos[i] = ModelToDTO(note)
	}
	return dtos
}

// PagedToDTO конвертирует страницу заметок вместе с производными полями
func PagedToDTO(p model.PagedResult) PagedNotesDTO {
	return PagedNotesDTO{
		Items:           ModelsToDTOs(p.Items),
		TotalCount:      p.TotalCount,
		Page:            p.Page,
		PageSize:        p.PageSize,
		Search:          optionalSearch(p.Search),
		SortBy:          string(p.SortBy),
		SortDescending:  p.SortDescending,
		TotalPages:      p.TotalPages(),
		HasNextPage:     p.HasNextPage(),
		HasPreviousPage: p.HasPreviousPage(),
		NextPage:        p.NextPage(),
		PreviousPage:    p.PreviousPage(),
		FirstItemIndex:  p.FirstItemIndex(),
		LastItemIndex:   p.LastItemIndex(),
	}
}

// optionalSearch пустую строку поиска отдает как null
func optionalSearch(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
