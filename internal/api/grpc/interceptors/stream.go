package interceptors

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

// wrappedServerStream оборачивает grpc.ServerStream, чтобы подменить контекст
// и считать отправленные сообщения
type wrappedServerStream struct {
	grpc.ServerStream
	ctx  context.Context
	sent int
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// SendMsg переопределяет метод для подсчета исходящих сообщений
func (w *wrappedServerStream) SendMsg(m any) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sent++
	}
	return err
}

// StreamInterceptor логирует открытие и завершение стрима (например Health.Watch)
func StreamInterceptor(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		log.Debug().Str("method", info.FullMethod).Msg("gRPC stream opened")

		start := time.Now()
		wrapped := &wrappedServerStream{
			ServerStream: ss,
			ctx:          log.WithContext(ss.Context()),
		}

		// Вызываем обработчик с обернутым стримом
		err := handler(srv, wrapped)

		logResult(log.With().Int("messages_sent", wrapped.sent).Logger(), info.FullMethod, err, time.Since(start))
		return err
	}
}
