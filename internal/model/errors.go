package model

import (
	"errors"
	"strings"
)

var (
	// ErrNoteNotFound возвращается хранилищем, когда заметка не найдена
	ErrNoteNotFound = errors.New("note not found")

	// ErrConflict зарезервирована под конфликт версий, сейчас не возвращается
	ErrConflict = errors.New("note conflict")
)

// ValidationErrorMessage общее сообщение для ошибок валидации
const ValidationErrorMessage = "One or more validation errors occurred."

// ValidationError содержит полный список нарушенных правил
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError создает ошибку валидации из списка сообщений
func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

// AsValidationError извлекает ValidationError из цепочки ошибок
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
