package interceptors

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggerUnaryInterceptor перехватывает запросы и логирует информацию о них:
// метод, статус ответа и затраченное время
func LoggerUnaryInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		// Засекаем время начала выполнения
		start := time.Now()

		// Вызываем следующий обработчик в цепочке
		resp, err := handler(log.WithContext(ctx), req)

		logResult(log, info.FullMethod, err, time.Since(start))
		return resp, err
	}
}

func logResult(log zerolog.Logger, method string, err error, duration time.Duration) {
	if err == nil {
		log.Debug().
			Str("method", method).
			Dur("duration", duration).
			Msg("gRPC request completed")
		return
	}

	// Извлекаем статус из ошибки
	st := status.Convert(err)
	log.Warn().
		Str("method", method).
		Str("code", st.Code().String()).
		Str("error", st.Message()).
		Dur("duration", duration).
		Msg("gRPC request failed")
}
