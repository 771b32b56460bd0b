package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"notes-api/internal/api/http/response"
	"notes-api/internal/auth"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	pingTimeout = 2 * time.Second
)

type healthStatus struct {
	Status string `json:"status"`
}

type detailedHealth struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	AuthMode    string    `json:"authMode"`
	Version     string    `json:"version"`
}

type claimDTO struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type authInfo struct {
	AuthenticationMode string     `json:"authenticationMode"`
	IsAuthenticated    bool       `json:"isAuthenticated"`
	UserName           string     `json:"userName,omitempty"`
	Claims             []claimDTO `json:"claims"`
}

func (h *Handler) registerHealth(r *mux.Router) {
	r.HandleFunc("/health", h.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", h.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/health/live", h.handleLive).Methods(http.MethodGet)
	r.HandleFunc("/health/detailed", h.handleDetailed).Methods(http.MethodGet)
}

// handleReady готовность: хранилище отвечает на ping
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.opts.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.opts.Store.Ping(ctx); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("Readiness check failed")
			response.Write(w, http.StatusServiceUnavailable, healthStatus{Status: StatusUnhealthy})
			return
		}
	}
	response.Write(w, http.StatusOK, healthStatus{Status: StatusHealthy})
}

// handleLive процесс жив, зависимости не проверяются
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	response.Write(w, http.StatusOK, healthStatus{Status: StatusHealthy})
}

func (h *Handler) handleDetailed(w http.ResponseWriter, r *http.Request) {
	authMode := "production"
	if h.auth != nil && h.auth.Mode() == auth.ModeDevelopment {
		authMode = auth.ModeDevelopment
	}
	response.OK(w, r, http.StatusOK, detailedHealth{
		Status:      StatusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.opts.Environment,
		AuthMode:    authMode,
		Version:     h.opts.Version,
	}, "System is healthy")
}

// handleAuthInfo отладочная информация об аутентификации (только development).
// Неудачная аутентификация не ошибка: isAuthenticated == false.
func (h *Handler) handleAuthInfo(w http.ResponseWriter, r *http.Request) {
	info := authInfo{Claims: []claimDTO{}}
	if h.auth != nil {
		info.AuthenticationMode = h.auth.Mode()
		if p, err := h.auth.Authenticate(r); err == nil {
			info.IsAuthenticated = true
			info.UserName = p.Name
			keys := make([]string, 0, len(p.Claims))
			for k := range p.Claims {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				info.Claims = append(info.Claims, claimDTO{Type: k, Value: p.Claims[k]})
			}
		}
	}
	response.OK(w, r, http.StatusOK, info, "Authentication information retrieved")
}
