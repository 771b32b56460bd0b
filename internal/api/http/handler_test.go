package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-api/internal/api/http/middleware"
	"notes-api/internal/api/swagger"
	"notes-api/internal/auth"
	"notes-api/internal/converter"
	"notes-api/internal/model"
	"notes-api/internal/repository/memory"
	"notes-api/internal/service/notes"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Errors    []string        `json:"errors"`
	Timestamp string          `json:"timestamp"`
	TraceID   string          `json:"traceId"`
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testAPI struct {
	handler http.Handler
}

func newTestAPI(t *testing.T, authenticator auth.Authenticator, mutate ...func(*Options)) *testAPI {
	t.Helper()
	repo := memory.NewRepository()
	opts := Options{
		Environment:  "development",
		Version:      "1.2.3",
		DevEndpoints: true,
		Store:        repo,
		Swagger:      swagger.Handler(),
	}
	for _, m := range mutate {
		m(&opts)
	}
	// Каждое обращение к часам сдвигает время на секунду
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	h := NewHandler(notes.NewNoteService(repo, nil, notes.WithClock(tick)), authenticator, opts)
	return &testAPI{handler: middleware.Trace(h.Router())}
}

func (a *testAPI) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (a *testAPI) create(t *testing.T, body string) converter.NoteDTO {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, NotesPath, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto converter.NoteDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	return dto
}

func TestCreateAndGetNote(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	rec, env := api.do(t, http.MethodPost, NotesPath, `{"title":"  Groceries  ","content":"milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Note created successfully", env.Message)
	assert.NotEmpty(t, env.TraceID)
	assert.Equal(t, env.TraceID, rec.Header().Get(middleware.TraceIDHeader))
	assert.NotEmpty(t, env.Timestamp)

	var created converter.NoteDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Groceries", created.Title)
	require.NotNil(t, created.Content)
	assert.Equal(t, "milk", *created.Content)
	assert.Equal(t, NotesPath+"/"+created.ID, rec.Header().Get("Location"))

	rec, env = api.do(t, http.MethodGet, NotesPath+"/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note retrieved successfully", env.Message)
	var got converter.NoteDTO
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created, got)
}

func TestCreateNote_WithoutContentOmitsField(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	_, env := api.do(t, http.MethodPost, NotesPath, `{"title":"bare"}`)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.NotContains(t, fields, "content")
	assert.Contains(t, fields, "createdAtUtc")
}

func TestCreateNote_ValidationErrors(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	rec, env := api.do(t, http.MethodPost, NotesPath, `{"title":"   ","content":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "One or more validation errors occurred.", env.Message)
	assert.Equal(t, []string{
		"Title cannot contain only whitespace.",
		"Content cannot contain only whitespace when provided.",
	}, env.Errors)
	assert.JSONEq(t, `null`, string(env.Data))
}

func TestEnvelope_KeysAlwaysPresent(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())
	created := api.create(t, `{"title":"temp"}`)

	rec, _ := api.do(t, http.MethodDelete, NotesPath+"/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	for _, key := range []string{"success", "data", "message", "errors", "timestamp", "traceId"} {
		assert.Contains(t, fields, key)
	}
	assert.JSONEq(t, `null`, string(fields["data"]))
	assert.JSONEq(t, `null`, string(fields["errors"]))

	rec, _ = api.do(t, http.MethodGet, NotesPath+"/paged", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Data, "search")
	assert.JSONEq(t, `null`, string(body.Data["search"]))
}

func TestCreateNote_BadPayload(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator(), func(o *Options) { o.MaxBodyBytes = 64 })

	rec, env := api.do(t, http.MethodPost, NotesPath, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload.", env.Message)

	rec, _ = api.do(t, http.MethodPost, NotesPath, `{"title":"`+strings.Repeat("a", 200)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListNotes(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	rec, env := api.do(t, http.MethodGet, NotesPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Retrieved 0 notes successfully", env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))

	api.create(t, `{"title":"one"}`)
	api.create(t, `{"title":"two"}`)

	_, env = api.do(t, http.MethodGet, NotesPath, "")
	assert.Equal(t, "Retrieved 2 notes successfully", env.Message)
	var list []converter.NoteDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Title, "most recently updated first")
}

func TestUpdateNote(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())
	created := api.create(t, `{"title":"draft","content":"v1"}`)

	rec, env := api.do(t, http.MethodPut, NotesPath+"/"+created.ID, `{"title":"final"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note updated successfully", env.Message)

	var updated converter.NoteDTO
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "final", updated.Title)
	assert.Nil(t, updated.Content, "omitted content clears it")
	assert.True(t, created.CreatedAtUTC.Equal(updated.CreatedAtUTC))
	assert.True(t, updated.UpdatedAtUTC.After(created.UpdatedAtUTC))

	rec, env = api.do(t, http.MethodPut, NotesPath+"/"+created.ID, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Title is required."}, env.Errors)

	rec, env = api.do(t, http.MethodPut, NotesPath+"/3f2504e0-4f89-41d3-9a0c-0305e82c3301", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Note not found", env.Message)
}

func TestDeleteNote(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())
	created := api.create(t, `{"title":"temp"}`)

	rec, env := api.do(t, http.MethodDelete, NotesPath+"/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Note deleted successfully", env.Message)

	rec, env = api.do(t, http.MethodDelete, NotesPath+"/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)

	rec, _ = api.do(t, http.MethodGet, NotesPath+"/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoteID_Malformed(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec, env := api.do(t, method, NotesPath+"/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.Equal(t, "Invalid note ID format.", env.Message)
	}
}

func TestListPaged(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())
	for _, title := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		api.create(t, `{"title":"`+title+`"}`)
	}

	rec, env := api.do(t, http.MethodGet, NotesPath+"/paged?page=2&pageSize=2&sortBy=title&sortDescending=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Retrieved 2 of 5 notes (page 2 of 3)", env.Message)

	var page converter.PagedNotesDTO
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Charlie", page.Items[0].Title)
	assert.Equal(t, "Delta", page.Items[1].Title)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "title", page.SortBy)
	assert.True(t, page.HasNextPage)
	assert.True(t, page.HasPreviousPage)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 3, *page.NextPage)
	assert.Equal(t, 3, page.FirstItemIndex)
	assert.Equal(t, 4, page.LastItemIndex)

	_, env = api.do(t, http.MethodGet, NotesPath+"/paged?pageSize=500", "")
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, "updated", page.SortBy)
	assert.True(t, page.SortDescending)
}

func TestListPaged_HugePage(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())
	api.create(t, `{"title":"only"}`)

	for _, p := range []string{"9223372036854775807", "922337203685477582", "1844674407370955163"} {
		rec, env := api.do(t, http.MethodGet, NotesPath+"/paged?page="+p, "")
		require.Equal(t, http.StatusOK, rec.Code, p)

		var page converter.PagedNotesDTO
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Empty(t, page.Items, p)
		assert.Equal(t, model.MaxPage, page.Page, p)
		assert.Equal(t, 1, page.TotalCount)
		assert.False(t, page.HasNextPage)
		assert.Zero(t, page.FirstItemIndex)
	}
}

func TestListPaged_BadParams(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	rec, env := api.do(t, http.MethodGet, NotesPath+"/paged?page=abc&sortDescending=maybe&createdAfter=yesterday", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{
		"page must be an integer.",
		"sortDescending must be true or false.",
		"createdAfter must be an ISO 8601 date.",
	}, env.Errors)

	rec, env = api.do(t, http.MethodGet, NotesPath+"/paged?search=ab", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Search term must be at least 3 characters."}, env.Errors)

	rec, _ = api.do(t, http.MethodGet, NotesPath+"/paged?createdAfter=2025-02-01&createdBefore=2025-01-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())
	api.create(t, `{"title":"Shopping list"}`)
	api.create(t, `{"title":"Work","content":"shopping for a laptop"}`)

	rec, env := api.do(t, http.MethodGet, NotesPath+"/search?searchTerm=SHOP", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Found 1 notes matching 'SHOP'", env.Message)

	rec, env = api.do(t, http.MethodGet, NotesPath+"/search?searchTerm=%20%20", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Search term is required"}, env.Errors)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	for _, path := range []string{"/health", "/health/ready", "/health/live"} {
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String(), path)
	}

	rec, env := api.do(t, http.MethodGet, "/health/detailed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "System is healthy", env.Message)
	var detailed map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &detailed))
	assert.Equal(t, "development", detailed["authMode"])
	assert.Equal(t, "development", detailed["environment"])
	assert.Equal(t, "1.2.3", detailed["version"])
}

func TestHealth_StoreDown(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator(), func(o *Options) { o.Store = failingPinger{} })

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthInfo(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	rec, env := api.do(t, http.MethodGet, "/api/auth-info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info authInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, auth.ModeDevelopment, info.AuthenticationMode)
	assert.True(t, info.IsAuthenticated)
	assert.Equal(t, "Development User", info.UserName)
	require.Len(t, info.Claims, 3)
	assert.Equal(t, "email", info.Claims[0].Type)
}

func TestDevEndpointsDisabled(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator(), func(o *Options) { o.DevEndpoints = false })

	for _, path := range []string{"/api/auth-info", "/swagger.json"} {
		rec, env := api.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Resource not found.", env.Message)
	}
}

func TestSwaggerDocument(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc, "paths")
}

type rejectAll struct{}

func (rejectAll) Authenticate(*http.Request) (*auth.Principal, error) { return nil, auth.ErrNoToken }
func (rejectAll) Mode() string                                        { return auth.ModeOIDC }

func TestNotesRequireAuthentication(t *testing.T) {
	api := newTestAPI(t, rejectAll{})

	rec, env := api.do(t, http.MethodGet, NotesPath, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Authentication required.", env.Message)

	// health остается открытым
	rec, env = api.do(t, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var detailed map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &detailed))
	assert.Equal(t, "production", detailed["authMode"])

	_, env = api.do(t, http.MethodGet, "/api/auth-info", "")
	var info authInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.False(t, info.IsAuthenticated)
	assert.Empty(t, info.Claims)
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t, auth.NewDevAuthenticator())

	rec, env := api.do(t, http.MethodPatch, NotesPath, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed.", env.Message)
}
