// grpc собирает gRPC-сервер харвестера: стандартный health-сервис,
// рефлексия в local/dev и prometheus-метрики вызовов.
package grpc

import (
	"context"
	"log/slog"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
	"github.com/pribylovaa/go-maps-harvester/internal/transport/grpc/interceptors"
)

// Options — параметры сборки gRPC-сервера.
type Options struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	Reflection bool
}

// NewServer создаёт сервер с цепочкой интерсепторов и зарегистрированным health.
// Статус health изначально NOT_SERVING; его переключает WatchReadiness.
func NewServer(opts Options) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recover(opts.Logger),
			interceptors.UnaryLoggingInterceptor(opts.Logger),
			interceptors.WithTimeout(opts.Timeout),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}

	grpc_prometheus.Register(srv)

	return srv, hs
}

// WatchReadiness проверяет check сразу и затем раз в period, выставляя
// SERVING/NOT_SERVING. Возвращается по отмене ctx, оставляя NOT_SERVING.
func WatchReadiness(ctx context.Context, hs *health.Server, check func(context.Context) error, period time.Duration) {
	probe(ctx, hs, check)

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		case <-t.C:
			probe(ctx, hs, check)
		}
	}
}

func probe(ctx context.Context, hs *health.Server, check func(context.Context) error) {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := check(pctx); err != nil {
		log.From(ctx).Warn("readiness_probe_failed", slog.String("err", err.Error()))
		hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}
