package gormstore

import (
	"context"
	"fmt"

	"notes-api/internal/repository"

	"gorm.io/gorm/clause"
)

// Seed добавляет начальные заметки, если их еще нет. Повторный запуск ничего не меняет.
// Возвращает количество вставленных записей.
func (s *Store) Seed(ctx context.Context) (int, error) {
	inserted := 0
	for _, note := range repository.SeedNotes {
		rec := toRecord(note)
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rec)
		if res.Error != nil {
			return inserted, fmt.Errorf("seed note %s: %w", note.ID, res.Error)
		}
		inserted += int(res.RowsAffected)
	}
	return inserted, nil
}
