// Package httpapi JSON HTTP API заметок поверх gorilla/mux.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"notes-api/internal/api/http/response"
	"notes-api/internal/auth"
	"notes-api/internal/converter"
	"notes-api/internal/model"
	svc "notes-api/internal/service"
)

const (
	NotesPath = "/api/v1/notes"

	defaultMaxBodyBytes = 1 << 20

	msgNoteNotFound   = "Note not found"
	msgInvalidID      = "Invalid note ID format."
	msgInvalidPayload = "Invalid request payload."
	msgUnauthorized   = "Authentication required."
	msgRouteNotFound  = "Resource not found."
	msgNotAllowed     = "Method not allowed."
	msgConflict       = "The note was modified concurrently."
)

// Pinger проверка доступности хранилища для health-эндпоинтов
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options зависимости и параметры HTTP API
type Options struct {
	Environment  string
	Version      string
	DevEndpoints bool // /api/auth-info и /swagger.json
	MaxBodyBytes int64
	Store        Pinger
	Swagger      http.Handler
}

// Handler обработчики HTTP API заметок
type Handler struct {
	service svc.NoteService
	auth    auth.Authenticator
	opts    Options
}

// NewHandler создает обработчики поверх сервиса заметок
func NewHandler(service svc.NoteService, authenticator auth.Authenticator, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{service: service, auth: authenticator, opts: opts}
}

// Router регистрирует все маршруты API.
// /api/v1/notes требует аутентификации, health и документация открыты.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, msgRouteNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, msgNotAllowed)
	})

	h.registerHealth(r)

	if h.opts.DevEndpoints {
		r.HandleFunc("/api/auth-info", h.handleAuthInfo).Methods(http.MethodGet)
		if h.opts.Swagger != nil {
			r.Handle("/swagger.json", h.opts.Swagger).Methods(http.MethodGet, http.MethodOptions)
		}
	}

	notes := r.PathPrefix(NotesPath).Subrouter()
	notes.Use(auth.Middleware(h.auth, h.unauthorized))
	notes.HandleFunc("", h.handleListNotes).Methods(http.MethodGet)
	notes.HandleFunc("", h.handleCreateNote).Methods(http.MethodPost)
	// /paged и /search регистрируются раньше /{id}
	notes.HandleFunc("/paged", h.handleListPaged).Methods(http.MethodGet)
	notes.HandleFunc("/search", h.handleSearch).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", h.handleGetNote).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", h.handleUpdateNote).Methods(http.MethodPut)
	notes.HandleFunc("/{id}", h.handleDeleteNote).Methods(http.MethodDelete)

	return r
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, converter.ModelsToDTOs(notes),
		fmt.Sprintf("Retrieved %d notes successfully", len(notes)))
}

func (h *Handler) handleListPaged(w http.ResponseWriter, r *http.Request) {
	req, problems := parsePagedRequest(r.URL.Query())
	if len(problems) > 0 {
		response.Error(w, r, http.StatusBadRequest, model.ValidationErrorMessage, problems...)
		return
	}

	page, err := h.service.ListPaged(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, converter.PagedToDTO(page),
		fmt.Sprintf("Retrieved %d of %d notes (page %d of %d)", len(page.Items), page.TotalCount, page.Page, page.TotalPages()))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("searchTerm")
	notes, err := h.service.Search(r.Context(), term)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	response.OK(w, r, http.StatusOK, converter.ModelsToDTOs(notes),
		fmt.Sprintf("Found %d notes matching '%s'", len(notes), term))
}

func (h *Handler) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	note, found, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if !found {
		response.Error(w, r, http.StatusNotFound, msgNoteNotFound)
		return
	}
	response.OK(w, r, http.StatusOK, converter.ModelToDTO(note), "Note retrieved successfully")
}

func (h *Handler) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req converter.CreateNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	note, err := h.service.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	w.Header().Set("Location", NotesPath+"/"+note.ID)
	response.OK(w, r, http.StatusCreated, converter.ModelToDTO(note), "Note created successfully")
}

func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	var req converter.UpdateNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	note, found, err := h.service.Update(r.Context(), id, req.Title, req.Content)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if !found {
		response.Error(w, r, http.StatusNotFound, msgNoteNotFound)
		return
	}
	response.OK(w, r, http.StatusOK, converter.ModelToDTO(note), "Note updated successfully")
}

func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if !found {
		response.Error(w, r, http.StatusNotFound, msgNoteNotFound)
		return
	}
	response.OK(w, r, http.StatusOK, nil, "Note deleted successfully")
}

// noteID достает и проверяет идентификатор заметки из пути
func (h *Handler) noteID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, msgInvalidID)
		return "", false
	}
	return id.String(), true
}

// decode разбирает JSON тело запроса с ограничением размера
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, r, http.StatusRequestEntityTooLarge, msgInvalidPayload,
				fmt.Sprintf("Request body must not exceed %d bytes.", maxErr.Limit))
			return false
		}
		response.Error(w, r, http.StatusBadRequest, msgInvalidPayload, "Request body must be a valid JSON object.")
		return false
	}
	return true
}

// serviceError единственное место сопоставления ошибок сервиса с HTTP статусами
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := model.AsValidationError(err); ok {
		response.Error(w, r, http.StatusBadRequest, model.ValidationErrorMessage, ve.Errors...)
		return
	}
	switch {
	case errors.Is(err, model.ErrNoteNotFound):
		response.Error(w, r, http.StatusNotFound, msgNoteNotFound)
	case errors.Is(err, model.ErrConflict):
		response.Error(w, r, http.StatusConflict, msgConflict)
	default:
		hlog.FromRequest(r).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("user_id", auth.UserID(r)).
			Msg("Request failed")
		response.Error(w, r, http.StatusInternalServerError, response.InternalErrorMessage)
	}
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Warn().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
	w.Header().Set("WWW-Authenticate", `Bearer`)
	response.Error(w, r, http.StatusUnauthorized, msgUnauthorized)
}
