package interceptors

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WithTimeout ограничивает unary-вызов дедлайном d (более ранний дедлайн
// клиента сохраняется). Голую ошибку контекста от обработчика переводит в
// статус gRPC, иначе клиент увидел бы codes.Unknown. d <= 0 — без изменений.
func WithTimeout(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}

		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		resp, err := handler(ctx, req)
		if _, isStatus := status.FromError(err); err != nil && !isStatus {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				return nil, status.Error(codes.DeadlineExceeded, info.FullMethod+": deadline exceeded")
			case errors.Is(err, context.Canceled):
				return nil, status.Error(codes.Canceled, info.FullMethod+": canceled")
			}
		}

		return resp, err
	}
}
