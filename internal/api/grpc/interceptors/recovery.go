package interceptors

import (
	"context"
	"runtime/debug"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoveryUnaryInterceptor превращает панику обработчика в codes.Internal
func RecoveryUnaryInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = recovered(log, info.FullMethod, rec)
			}
		}()
		return handler(ctx, req)
	}
}

// RecoveryStreamInterceptor то же для стриминговых методов
func RecoveryStreamInterceptor(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = recovered(log, info.FullMethod, rec)
			}
		}()
		return handler(srv, ss)
	}
}

func recovered(log zerolog.Logger, method string, rec any) error {
	log.Error().
		Str("method", method).
		Interface("panic", rec).
		Bytes("stack", debug.Stack()).
		Msg("gRPC handler panic")
	return status.Error(codes.Internal, "internal server error")
}
