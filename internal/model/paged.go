package model

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage наибольший номер страницы, при котором смещение помещается в int
	MaxPage = math.MaxInt / MaxPageSize

	// SearchMinLength минимальная длина строки полнотекстового поиска
	SearchMinLength = 3
)

// SortField поле сортировки списка заметок (закрытое перечисление)
type SortField string

const (
	SortByTitle   SortField = "title"
	SortByContent SortField = "content"
	SortByCreated SortField = "created"
	SortByUpdated SortField = "updated"
)

// sortAliases сопоставляет внешние имена полей сортировки с перечислением.
// Ключи в нижнем регистре; имена колонок SPA (UpdatedAtUtc и т.п.) тоже принимаются.
var sortAliases = map[string]SortField{
	"title":        SortByTitle,
	"content":      SortByContent,
	"created":      SortByCreated,
	"createdat":    SortByCreated,
	"createdatutc": SortByCreated,
	"updated":      SortByUpdated,
	"updatedat":    SortByUpdated,
	"updatedatutc": SortByUpdated,
}

// ParseSortField разбирает имя поля сортировки без учета регистра.
// Второе значение false, если имя пустое или неизвестное.
func ParseSortField(s string) (SortField, bool) {
	f, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

// PagedRequest параметры постраничного запроса заметок
type PagedRequest struct {
	Page           int
	PageSize       int
	Search         string
	Title          string
	Content        string
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	SortBy         string
	SortDescending bool
}

// NewPagedRequest возвращает запрос со значениями по умолчанию
func NewPagedRequest() PagedRequest {
	return PagedRequest{
		Page:           DefaultPage,
		PageSize:       DefaultPageSize,
		SortBy:         string(SortByUpdated),
		SortDescending: true,
	}
}

// Sanitize приводит страницу и размер страницы к допустимым границам,
// обрезает пробелы в строковых фильтрах. Выход за границы не является ошибкой.
func (r PagedRequest) Sanitize() PagedRequest {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	r.Search = strings.TrimSpace(r.Search)
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	return r
}

// Validate проверяет ограничения, которые нельзя исправить молча
func (r PagedRequest) Validate() error {
	var errs []string
	if r.Search != "" && utf8.RuneCountInString(strings.TrimSpace(r.Search)) < SearchMinLength {
		errs = append(errs, "Search term must be at least 3 characters.")
	}
	if r.CreatedAfter != nil && r.CreatedBefore != nil && r.CreatedAfter.After(*r.CreatedBefore) {
		errs = append(errs, "createdAfter must not be later than createdBefore.")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Skip количество пропускаемых записей
func (r PagedRequest) Skip() int {
	return (r.Page - 1) * r.PageSize
}

// PagedResult страница заметок с производными индикаторами границ
type PagedResult struct {
	Items          []Note
	TotalCount     int
	Page           int
	PageSize       int
	Search         string
	SortBy         SortField
	SortDescending bool
}

// TotalPages общее количество страниц
func (p PagedResult) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasNextPage есть ли следующая страница
func (p PagedResult) HasNextPage() bool {
	return p.Page < p.TotalPages()
}

// HasPreviousPage есть ли предыдущая страница. Для пустой выборки всегда false.
func (p PagedResult) HasPreviousPage() bool {
	return p.TotalCount > 0 && p.Page > 1
}

// NextPage номер следующей страницы или nil
func (p PagedResult) NextPage() *int {
	if !p.HasNextPage() {
		return nil
	}
	n := p.Page + 1
	return &n
}

// PreviousPage номер предыдущей страницы или nil
func (p PagedResult) PreviousPage() *int {
	if !p.HasPreviousPage() {
		return nil
	}
	n := p.Page - 1
	return &n
}

// FirstItemIndex индекс первого элемента страницы в общей выборке (с 1), 0 для пустой страницы
func (p PagedResult) FirstItemIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PageSize + 1
}

// LastItemIndex индекс последнего элемента страницы в общей выборке, 0 для пустой страницы
func (p PagedResult) LastItemIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PageSize + len(p.Items)
}
