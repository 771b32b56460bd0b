package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	grpcapi "notes-api/internal/api/grpc"
	httpapi "notes-api/internal/api/http"
	"notes-api/internal/api/http/middleware"
	"notes-api/internal/api/swagger"
	"notes-api/internal/auth"
	"notes-api/internal/cache"
	"notes-api/internal/config"
	"notes-api/internal/repository"
	"notes-api/internal/repository/gormstore"
	"notes-api/internal/repository/memory"
	notesService "notes-api/internal/service/notes"
)

// Server представляет сервер приложения: HTTP API и gRPC health
type Server struct {
	// HTTP компоненты
	HTTPServer *http.Server
	HTTPAddr   string

	// gRPC компоненты
	GRPCServer *grpc.Server
	GRPCAddr   string
	Listener   net.Listener
	Health     *health.Server

	// Контекст фоновых задач (health checker); отменяется при shutdown
	Ctx    context.Context
	Cancel context.CancelFunc

	Config *config.Config
	Log    zerolog.Logger

	store   repository.NoteRepository
	cache   *cache.Memory
	checker *grpcapi.HealthChecker
}

// NewServer создает и инициализирует сервер (Repository → Cache → Service → Handler)
func NewServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	authenticator, err := NewAuthenticator(ctx, cfg)
	if err != nil {
		closeStore(store, log)
		return nil, err
	}
	log.Info().Str("mode", authenticator.Mode()).Msg("Initialized authentication")

	var notesCache *cache.Memory
	var svcCache cache.NotesCache = cache.Noop{}
	if cfg.Cache.Enabled {
		notesCache = cache.NewMemory(cache.Options{
			SlidingExpiration:  time.Duration(cfg.Cache.SlidingExpiration) * time.Second,
			AbsoluteExpiration: time.Duration(cfg.Cache.AbsoluteExpiration) * time.Second,
		})
		svcCache = notesCache
		log.Info().
			Int("sliding_seconds", cfg.Cache.SlidingExpiration).
			Int("absolute_seconds", cfg.Cache.AbsoluteExpiration).
			Msg("Initialized notes cache")
	}

	noteSvc := notesService.NewNoteService(store, svcCache, notesService.WithLogger(log))
	log.Info().Msg("Initialized note service")

	opts := httpapi.Options{
		Environment:  cfg.App.Environment,
		Version:      cfg.App.Version,
		DevEndpoints: cfg.IsDevelopment(),
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Store:        store,
	}
	if cfg.Swagger != nil && cfg.Swagger.Enabled {
		opts.Swagger = swagger.Handler()
	}
	handler := httpapi.NewHandler(noteSvc, authenticator, opts)

	httpAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortHTTP)
	grpcAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortGRPC)

	// Создаем listener для gRPC
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		closeStore(store, log)
		return nil, fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}

	healthServer := health.NewServer()
	serverCtx, serverCancel := context.WithCancel(context.Background())

	return &Server{
		HTTPServer: &http.Server{
			Addr:              httpAddr,
			Handler:           NewHTTPHandler(handler, cfg.HTTP, log),
			ReadTimeout:       seconds(cfg.Server.HTTPReadTimeout),
			WriteTimeout:      seconds(cfg.Server.HTTPWriteTimeout),
			IdleTimeout:       seconds(cfg.Server.HTTPIdleTimeout),
			ReadHeaderTimeout: seconds(cfg.Server.HTTPReadHeaderTimeout),
		},
		HTTPAddr:   httpAddr,
		GRPCServer: grpcapi.NewServer(log, healthServer, cfg.Server.UseReflection),
		GRPCAddr:   grpcAddr,
		Listener:   listener,
		Health:     healthServer,
		Ctx:        serverCtx,
		Cancel:     serverCancel,
		Config:     cfg,
		Log:        log,
		store:      store,
		cache:      notesCache,
		checker:    grpcapi.NewHealthChecker(store, healthServer, seconds(cfg.Server.HealthCheckInterval), log),
	}, nil
}

// NewHTTPHandler оборачивает маршруты в цепочку middleware.
// Порядок: логгер запроса → trace id → логирование → recovery → CORS → rate limit → маршруты.
func NewHTTPHandler(h *httpapi.Handler, cfg *config.ConfigHTTP, log zerolog.Logger) http.Handler {
	var handler http.Handler = h.Router()
	handler = middleware.RateLimit(handler, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, cfg.CORSMaxAge)(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Trace(handler)
	handler = hlog.NewHandler(log)(handler)
	return handler
}

// NewAuthenticator выбирает схему аутентификации по конфигурации.
// Заглушка разработчика допускается только в окружении development.
func NewAuthenticator(ctx context.Context, cfg *config.Config) (auth.Authenticator, error) {
	if cfg.UseDevAuth() {
		return auth.NewDevAuthenticator(), nil
	}
	if cfg.Auth.UseDevAuthentication {
		return nil, errors.New("development authentication is allowed only in the development environment")
	}
	return auth.NewOIDCAuthenticator(ctx, cfg.Auth.Issuer, cfg.Auth.Audience)
}

// OpenStore открывает хранилище, применяет миграции и начальные данные по конфигурации
func OpenStore(ctx context.Context, cfg *config.ConfigDatabase, log zerolog.Logger) (repository.NoteRepository, error) {
	var store repository.NoteRepository
	if strings.EqualFold(cfg.Driver, config.DriverMemory) {
		store = memory.NewRepository()
		log.Info().Msg("Initialized in-memory repository (map-based)")
	} else {
		db, err := gormstore.Open(gormstore.Options{
			Driver:          cfg.Driver,
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: seconds(cfg.ConnMaxLifetime),
			Debug:           cfg.Debug,
		}, log)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
			log.Info().Msg("Applied database migrations")
		}
		store = db
		log.Info().Str("driver", cfg.Driver).Msg("Initialized database repository")
	}

	if cfg.Seed {
		if err := Seed(ctx, store, log); err != nil {
			closeStore(store, log)
			return nil, err
		}
	}
	return store, nil
}

// Seed добавляет начальные заметки, если хранилище это поддерживает
func Seed(ctx context.Context, store repository.NoteRepository, log zerolog.Logger) error {
	seeder, ok := store.(repository.Seeder)
	if !ok {
		return nil
	}
	n, err := seeder.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info().Int("inserted", n).Msg("Seeded notes")
	return nil
}

// Start запускает health checker, gRPC и HTTP серверы в горутинах.
// Возвращает канал ошибок для отслеживания ошибок серверов
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 2)

	go s.checker.Run(s.Ctx)

	// Запуск gRPC сервера в горутине
	go func() {
		s.Log.Info().Str("addr", s.GRPCAddr).Msg("gRPC server listening")
		if err := s.GRPCServer.Serve(s.Listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		s.Log.Info().Str("addr", s.HTTPAddr).Msg("HTTP server listening")
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера
func (s *Server) Shutdown() error {
	s.Log.Info().Msg("Starting graceful shutdown...")

	// Останавливаем health checker; он переводит статус в NOT_SERVING
	s.Cancel()

	shutdownTimeout := seconds(s.Config.Server.GracefulShutdownTimeout)
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	} else {
		s.Log.Info().Msg("HTTP server stopped gracefully")
	}

	stopped := make(chan struct{})
	go func() {
		s.GRPCServer.GracefulStop()
		close(stopped)
	}()

	// Ожидаем завершения или таймаут
	select {
	case <-stopped:
		s.Log.Info().Msg("gRPC server stopped gracefully")
	case <-ctx.Done():
		s.Log.Warn().Msg("Graceful shutdown timeout, forcing stop...")
		s.GRPCServer.Stop()
		errs = append(errs, ctx.Err())
	}

	if s.cache != nil {
		_ = s.cache.Close()
	}
	closeStore(s.store, s.Log)

	return errors.Join(errs...)
}

func closeStore(store repository.NoteRepository, log zerolog.Logger) {
	if c, ok := store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
