package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-api/internal/model"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache() (*Memory, *clock) {
	clk := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewMemory(Options{Now: clk.Now}), clk
}

var sample = []model.Note{{ID: "1", Title: "one", Content: model.StringPtr("body")}}

func TestMemory_GetSet(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	c.Set(ctx, c.Generation(ctx), sample)
	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, sample, got)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	in := []model.Note{sample[0].Clone()}
	c.Set(ctx, c.Generation(ctx), in)
	*in[0].Content = "changed after set"

	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "body", *got[0].Content)

	got[0].Title = "changed after get"
	again, _ := c.Get(ctx)
	assert.Equal(t, "one", again[0].Title)
}

func TestMemory_SlidingExpiration(t *testing.T) {
	c, clk := newTestCache()
	ctx := context.Background()
	c.Set(ctx, c.Generation(ctx), sample)

	// Каждое чтение продлевает скользящий срок
	for i := 0; i < 2; i++ {
		clk.Advance(4 * time.Minute)
		_, ok := c.Get(ctx)
		require.True(t, ok, "read %d", i)
	}

	clk.Advance(5 * time.Minute)
	_, ok := c.Get(ctx)
	assert.False(t, ok, "idle for the sliding window")
}

func TestMemory_AbsoluteExpiration(t *testing.T) {
	c, clk := newTestCache()
	ctx := context.Background()
	c.Set(ctx, c.Generation(ctx), sample)

	// Частые чтения не продлевают запись дальше абсолютного срока
	for elapsed := time.Duration(0); elapsed < 14*time.Minute; elapsed += 2 * time.Minute {
		clk.Advance(2 * time.Minute)
		_, ok := c.Get(ctx)
		require.True(t, ok)
	}

	clk.Advance(2 * time.Minute)
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestMemory_Invalidate(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	c.Set(ctx, c.Generation(ctx), sample)
	c.Invalidate(ctx)
	_, ok := c.Get(ctx)
	assert.False(t, ok)

	// Повторная инвалидация пустого кэша безопасна
	c.Invalidate(ctx)

	c.Set(ctx, c.Generation(ctx), sample)
	require.NoError(t, c.Close())
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestMemory_CustomExpiration(t *testing.T) {
	clk := &clock{now: time.Now()}
	c := NewMemory(Options{SlidingExpiration: time.Second, AbsoluteExpiration: time.Hour, Now: clk.Now})
	ctx := context.Background()

	c.Set(ctx, c.Generation(ctx), sample)
	clk.Advance(time.Second)
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestMemory_Concurrent(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(ctx, c.Generation(ctx), sample)
				c.Get(ctx)
				c.Invalidate(ctx)
			}
		}()
	}
	wg.Wait()
}

func TestMemory_StaleGenerationIsDropped(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	gen := c.Generation(ctx)
	c.Invalidate(ctx)
	assert.NotEqual(t, gen, c.Generation(ctx))

	assert.False(t, c.Set(ctx, gen, sample), "fill started before invalidate")
	_, ok := c.Get(ctx)
	assert.False(t, ok)

	assert.True(t, c.Set(ctx, c.Generation(ctx), sample))
	_, ok = c.Get(ctx)
	assert.True(t, ok)

	// Устаревшее заполнение не затирает свежее значение
	fresh := []model.Note{{ID: "2", Title: "two"}}
	gen = c.Generation(ctx)
	c.Invalidate(ctx)
	require.True(t, c.Set(ctx, c.Generation(ctx), fresh))
	assert.False(t, c.Set(ctx, gen, sample))
	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, fresh, got)
}

func TestNoop(t *testing.T) {
	var c NotesCache = Noop{}
	ctx := context.Background()

	assert.False(t, c.Set(ctx, c.Generation(ctx), sample))
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}
