package repository

import (
	"time"

	"notes-api/internal/model"
)

var seedTime = time.Date(2024, 9, 8, 12, 0, 0, 0, time.UTC)

// SeedNotes начальные заметки, которые создаются миграцией
var SeedNotes = []model.Note{
	{
		ID:        "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		Title:     "Welcome to Notes App",
		Content:   model.StringPtr("This is your first note. Feel free to edit or delete it."),
		CreatedAt: seedTime,
		UpdatedAt: seedTime,
	},
	{
		ID:        "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Title:     "Project Ideas",
		Content:   model.StringPtr("1. Build a task management system\n2. Create a recipe sharing platform\n3. Develop a fitness tracker"),
		CreatedAt: seedTime,
		UpdatedAt: seedTime,
	},
}
