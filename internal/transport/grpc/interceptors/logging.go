// interceptors — unary-интерсепторы gRPC-сервера харвестера.
package interceptors

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

// MetadataRequestID — ключ metadata с идентификатором запроса (как X-Request-ID в HTTP).
const MetadataRequestID = "x-request-id"

// healthPrefix — методы grpc.health.v1; их успешные вызовы шумят пробами.
const healthPrefix = "/grpc.health.v1.Health/"

// UnaryLoggingInterceptor логирует unary-вызовы и кладёт логгер запроса в context.
//
// request_id берётся из metadata x-request-id или генерируется и
// возвращается клиенту в заголовке ответа. Итоговая запись msg="grpc"
// пишется с code и dur. Уровень: Warn для ошибок, Debug для успешных
// health-проб, Info для остального.
func UnaryLoggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		rid := requestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(MetadataRequestID, rid))

		peerStr := "-"
		if p, ok := peer.FromContext(ctx); ok && p != nil && p.Addr != nil {
			peerStr = p.Addr.String()
		}

		l := base.With(
			slog.String("request_id", rid),
			slog.String("method", info.FullMethod),
			slog.String("peer", peerStr),
		)
		ctx = log.Into(ctx, l)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		l.Log(ctx, callLevel(info.FullMethod, code), "grpc",
			slog.String("code", code.String()),
			slog.Duration("dur", time.Since(start)),
		)

		return resp, err
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(MetadataRequestID); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}

	return uuid.NewString()
}

func callLevel(method string, code codes.Code) slog.Level {
	switch {
	case code != codes.OK:
		return slog.LevelWarn
	case strings.HasPrefix(method, healthPrefix):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
