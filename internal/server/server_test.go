package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "notes-api/internal/api/http"
	"notes-api/internal/api/http/middleware"
	"notes-api/internal/auth"
	"notes-api/internal/config"
	"notes-api/internal/repository"
	notesService "notes-api/internal/service/notes"
)

func devConfig() *config.Config {
	return &config.Config{
		App:  &config.ConfigApp{Name: "notes-api", Environment: "development", Version: "test"},
		Auth: &config.ConfigAuth{UseDevAuthentication: true},
	}
}

func TestNewAuthenticator(t *testing.T) {
	a, err := NewAuthenticator(context.Background(), devConfig())
	require.NoError(t, err)
	assert.Equal(t, auth.ModeDevelopment, a.Mode())

	cfg := devConfig()
	cfg.App.Environment = "production"
	_, err = NewAuthenticator(context.Background(), cfg)
	assert.ErrorContains(t, err, "only in the development environment")
}

func TestOpenStore_Memory(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(ctx, &config.ConfigDatabase{Driver: "memory", Seed: true}, zerolog.Nop())
	require.NoError(t, err)

	notes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, len(repository.SeedNotes))
}

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.ConfigDatabase{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "notes.db"),
		AutoMigrate: true,
		Seed:        true,
	}

	store, err := OpenStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))
	closeStore(store, zerolog.Nop())

	// Повторное открытие той же БД не дублирует начальные заметки
	store, err = OpenStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { closeStore(store, zerolog.Nop()) })

	notes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, len(repository.SeedNotes))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.ConfigDatabase{Driver: "oracle", DSN: "x"}, zerolog.Nop())
	assert.Error(t, err)
}

func newChain(t *testing.T, httpCfg *config.ConfigHTTP, logs io.Writer) http.Handler {
	t.Helper()
	store, err := OpenStore(context.Background(), &config.ConfigDatabase{Driver: "memory"}, zerolog.Nop())
	require.NoError(t, err)

	h := httpapi.NewHandler(notesService.NewNoteService(store, nil), auth.NewDevAuthenticator(), httpapi.Options{
		Environment:  "development",
		DevEndpoints: true,
		Store:        store,
	})
	return NewHTTPHandler(h, httpCfg, zerolog.New(logs))
}

func TestNewHTTPHandler_Chain(t *testing.T) {
	var logs bytes.Buffer
	handler := newChain(t, &config.ConfigHTTP{
		CORSAllowedOrigins: "http://localhost:5173",
		RateLimitRPS:       1000,
		RateLimitBurst:     100,
	}, &logs)

	req := httptest.NewRequest(http.MethodPost, httpapi.NotesPath, strings.NewReader(`{"title":"via chain"}`))
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get(middleware.TraceIDHeader))
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	var env struct {
		TraceID string `json:"traceId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "req-1", env.TraceID)

	assert.Contains(t, logs.String(), "HTTP request completed")
	assert.Contains(t, logs.String(), `"traceId":"req-1"`)
}

func TestNewHTTPHandler_RateLimited(t *testing.T) {
	handler := newChain(t, &config.ConfigHTTP{RateLimitRPS: 1, RateLimitBurst: 1}, io.Discard)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
