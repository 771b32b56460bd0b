package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// TitleMaxLength максимальная длина заголовка в символах
	TitleMaxLength = 120
	// ContentMaxLength максимальная длина содержимого в символах
	ContentMaxLength = 5000
)

// Note представляет заметку (доменная модель)
type Note struct {
	ID        string    // UUID заметки
	Title     string    // Заголовок заметки
	Content   *string   // Содержание заметки (nil - не задано)
	CreatedAt time.Time // Дата создания (UTC)
	UpdatedAt time.Time // Дата последнего обновления (UTC)
}

// Validate проверяет валидность заметки и возвращает все нарушенные правила разом
func (n *Note) Validate() error {
	errs := ValidateTitle(n.Title)
	errs = append(errs, ValidateContent(n.Content)...)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// IsEmpty проверяет, пуста ли заметка
func (n *Note) IsEmpty() bool {
	return n.ID == "" && n.Title == "" && n.Content == nil
}

// ContentValue возвращает содержимое или пустую строку
func (n *Note) ContentValue() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}

// Clone возвращает копию заметки, не разделяющую указатель на содержимое
func (n Note) Clone() Note {
	if n.Content != nil {
		c := *n.Content
		n.Content = &c
	}
	return n
}

// ValidateTitle проверяет заголовок. Ожидается сырое значение до обрезки
// пробелов: так пустой ввод отличается от ввода из одних пробелов.
func ValidateTitle(raw string) []string {
	var errs []string
	trimmed := strings.TrimSpace(raw)
	switch {
	case raw == "":
		errs = append(errs, "Title is required.")
	case trimmed == "":
		errs = append(errs, "Title cannot contain only whitespace.")
	}
	if utf8.RuneCountInString(trimmed) > TitleMaxLength {
		errs = append(errs, "Title cannot exceed 120 characters.")
	}
	return errs
}

// ValidateContent проверяет содержимое; nil означает, что содержимое не передано
func ValidateContent(raw *string) []string {
	if raw == nil {
		return nil
	}
	var errs []string
	trimmed := strings.TrimSpace(*raw)
	if utf8.RuneCountInString(trimmed) > ContentMaxLength {
		errs = append(errs, "Content cannot exceed 5000 characters.")
	}
	if trimmed == "" {
		errs = append(errs, "Content cannot contain only whitespace when provided.")
	}
	return errs
}

// Normalize обрезает пробелы по краям заголовка и содержимого
func Normalize(title string, content *string) (string, *string) {
	title = strings.TrimSpace(title)
	if content == nil {
		return title, nil
	}
	c := strings.TrimSpace(*content)
	return title, &c
}

// StringPtr возвращает указатель на строку
func StringPtr(s string) *string {
	return &s
}
