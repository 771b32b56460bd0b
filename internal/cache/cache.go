// Package cache содержит read-through кэш полного списка заметок.
package cache

import (
	"context"
	"sync"
	"time"

	"notes-api/internal/model"
)

const (
	// AllNotesKey единственный ключ кэша: несфильтрованный список по дате обновления
	AllNotesKey = "all_notes"

	DefaultSlidingExpiration  = 5 * time.Minute
	DefaultAbsoluteExpiration = 15 * time.Minute
)

// NotesCache кэш полного списка заметок. Операции не возвращают ошибок:
// кэш не должен ломать запрос, при сбое сервис просто идет в хранилище.
//
// Заполнение после промаха идет в два шага: Generation до чтения хранилища
// и Set с полученным поколением после. Invalidate меняет поколение, поэтому
// список, прочитанный до записи, не попадет в кэш после нее.
type NotesCache interface {
	// Get возвращает живую копию списка, если она есть
	Get(ctx context.Context) ([]model.Note, bool)
	// Generation текущее поколение кэша
	Generation(ctx context.Context) uint64
	// Set сохраняет список, если с момента получения gen не было Invalidate.
	// Возвращает false, если список отброшен.
	Set(ctx context.Context, gen uint64, notes []model.Note) bool
	// Invalidate удаляет закэшированный список и начинает новое поколение
	Invalidate(ctx context.Context)
}

// Options сроки жизни записи
type Options struct {
	// SlidingExpiration запись истекает после этого времени без обращений
	SlidingExpiration time.Duration
	// AbsoluteExpiration запись истекает не позже этого времени после записи
	AbsoluteExpiration time.Duration
	// Now источник времени, для тестов
	Now func() time.Time
}

type entry struct {
	notes        []model.Note
	lastAccess   time.Time
	absoluteDead time.Time
}

var _ NotesCache = (*Memory)(nil)

// Memory кэш в памяти процесса со скользящим и абсолютным сроком жизни
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	gen      uint64
	sliding  time.Duration
	absolute time.Duration
	now      func() time.Time
}

// NewMemory создает кэш; нулевые сроки заменяются значениями по умолчанию
func NewMemory(opts Options) *Memory {
	if opts.SlidingExpiration <= 0 {
		opts.SlidingExpiration = DefaultSlidingExpiration
	}
	if opts.AbsoluteExpiration <= 0 {
		opts.AbsoluteExpiration = DefaultAbsoluteExpiration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Memory{
		entries:  make(map[string]*entry),
		sliding:  opts.SlidingExpiration,
		absolute: opts.AbsoluteExpiration,
		now:      opts.Now,
	}
}

// Get возвращает копию списка и продлевает скользящий срок
func (c *Memory) Get(ctx context.Context) ([]model.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[AllNotesKey]
	if !ok {
		return nil, false
	}

	now := c.now()
	if c.expired(e, now) {
		delete(c.entries, AllNotesKey)
		return nil, false
	}
	e.lastAccess = now

	return copyNotes(e.notes), true
}

// Generation текущее поколение
func (c *Memory) Generation(ctx context.Context) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen
}

// Set кладет копию списка в кэш, если поколение не сменилось
func (c *Memory) Set(ctx context.Context, gen uint64, notes []model.Note) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}

	now := c.now()
	c.entries[AllNotesKey] = &entry{
		notes:        copyNotes(notes),
		lastAccess:   now,
		absoluteDead: now.Add(c.absolute),
	}
	return true
}

// Invalidate удаляет запись
func (c *Memory) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	delete(c.entries, AllNotesKey)
}

// Close очищает кэш при остановке процесса
func (c *Memory) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	clear(c.entries)
	return nil
}

func (c *Memory) expired(e *entry, now time.Time) bool {
	return !now.Before(e.absoluteDead) || !now.Before(e.lastAccess.Add(c.sliding))
}

func copyNotes(notes []model.Note) []model.Note {
	out := make([]model.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

// Noop кэш, который ничего не хранит
type Noop struct{}

var _ NotesCache = Noop{}

func (Noop) Get(context.Context) ([]model.Note, bool)       { return nil, false }
func (Noop) Generation(context.Context) uint64              { return 0 }
func (Noop) Set(context.Context, uint64, []model.Note) bool { return false }
func (Noop) Invalidate(context.Context)                     {}
