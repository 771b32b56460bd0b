package grpc

import (
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"notes-api/internal/api/grpc/interceptors"
)

// NotesServiceName имя сервиса, статус которого публикуется через grpc.health.v1
const NotesServiceName = "notes.v1.NotesService"

// NewServer создает и настраивает gRPC сервер с интерцепторами и health-сервисом.
// Порядок интерцепторов: Recovery → Logger, чтобы паника тоже попала в лог как ошибка.
func NewServer(log zerolog.Logger, healthServer *health.Server, useReflection bool) *grpc.Server {
	grpcServer := grpc.NewServer(
		// Ограничиваем количество одновременных стримов (Health.Watch)
		grpc.MaxConcurrentStreams(25),
		// KeepAlive параметры для защиты от зависших соединений
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     30 * time.Minute,
			MaxConnectionAge:      1 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  10 * time.Minute,
			Timeout:               20 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryUnaryInterceptor(log),
			interceptors.LoggerUnaryInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			interceptors.RecoveryStreamInterceptor(log),
			interceptors.StreamInterceptor(log),
		),
	)

	healthpb.RegisterHealthServer(grpcServer, healthServer)
	log.Info().Msg("Registered gRPC health service")

	// Настройка reflection (для grpcurl/grpcui)
	if useReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("Enabled gRPC reflection")
	}

	return grpcServer
}
