package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultCheckInterval = 15 * time.Second
	checkTimeout         = 2 * time.Second
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker периодически пингует хранилище и публикует результат
// в health-сервисе для общего статуса ("") и для NotesServiceName
type HealthChecker struct {
	store    Pinger
	health   *health.Server
	interval time.Duration
	log      zerolog.Logger
}

// NewHealthChecker создает проверку; interval <= 0 означает 15 секунд
func NewHealthChecker(store Pinger, healthServer *health.Server, interval time.Duration, log zerolog.Logger) *HealthChecker {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &HealthChecker{
		store:    store,
		health:   healthServer,
		interval: interval,
		log:      log,
	}
}

// Check выполняет одну проверку и обновляет статус
func (c *HealthChecker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := c.store.Ping(ctx); err != nil {
		c.log.Warn().Err(err).Msg("Store health check failed")
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	c.health.SetServingStatus("", st)
	c.health.SetServingStatus(NotesServiceName, st)
	return st
}

// Run проверяет сразу, затем с интервалом до отмены ctx.
// После отмены все сервисы переводятся в NOT_SERVING.
func (c *HealthChecker) Run(ctx context.Context) {
	c.Check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.health.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}
