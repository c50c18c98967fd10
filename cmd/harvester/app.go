package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pribylovaa/go-maps-harvester/internal/cache"
	"github.com/pribylovaa/go-maps-harvester/internal/capture/browser"
	"github.com/pribylovaa/go-maps-harvester/internal/config"
	"github.com/pribylovaa/go-maps-harvester/internal/decoder"
	"github.com/pribylovaa/go-maps-harvester/internal/fetcher"
	"github.com/pribylovaa/go-maps-harvester/internal/harvest"
	"github.com/pribylovaa/go-maps-harvester/internal/metrics"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
	"github.com/pribylovaa/go-maps-harvester/internal/queue/rabbitmq"
	"github.com/pribylovaa/go-maps-harvester/internal/service"
	"github.com/pribylovaa/go-maps-harvester/internal/storage/minio"
	"github.com/pribylovaa/go-maps-harvester/internal/storage/postgres"
)

// app — собранные зависимости процесса.
type app struct {
	svc     *service.Service
	metrics *metrics.Metrics
	closers []func()
}

// newApp подключает хранилище и опциональные сервисы (S3, Redis, RabbitMQ)
// и собирает пайплайн харвеста по конфигурации.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	lg := log.From(ctx)
	a := &app{metrics: metrics.New(nil)}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := postgres.New(dbCtx, cfg.DB.URL)
	dbCancel()
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	lg.Info("postgres_connected")

	transport, err := newTransport(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("transport: %w", err)
	}
	lg.Info("transport_selected", slog.String("transport", transport.Name()))

	pageFetcher := fetcher.New(transport,
		fetcher.WithLimiter(fetcher.NewLimiter(cfg.Fetcher.Rate.Requests, cfg.Fetcher.Rate.Window)),
		fetcher.WithMaxAttempts(cfg.Fetcher.MaxAttempts),
		fetcher.WithBackoff(fetcher.Backoff{
			Min:        cfg.Fetcher.Backoff.Min,
			Max:        cfg.Fetcher.Backoff.Max,
			Multiplier: cfg.Fetcher.Backoff.Multiplier,
		}),
		fetcher.WithMetrics(a.metrics),
	)

	capturer := browser.New(browser.Config{
		Headless:  !cfg.Browser.Headful,
		UserAgent: cfg.Browser.UserAgent,
		Timeout:   cfg.Browser.Timeout,
		Scrolls:   cfg.Browser.Scrolls,
		Settle:    cfg.Browser.Settle,
	})

	coordOpts := []harvest.Option{harvest.WithMetrics(a.metrics)}
	if cfg.S3.Endpoint != "" {
		archive, err := minio.New(ctx, cfg.S3)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("s3: %w", err)
		}
		coordOpts = append(coordOpts, harvest.WithArchive(archive))
		lg.Info("s3_archive_enabled", slog.String("bucket", cfg.S3.Bucket))
	}

	coordinator := harvest.New(capturer, pageFetcher, decoder.New(), coordOpts...)

	var svcOpts []service.Option
	if cfg.Redis.URL != "" {
		seen, err := cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Redis.SeenTTL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = seen.Close() })
		svcOpts = append(svcOpts, service.WithSeenCache(seen))
		lg.Info("redis_seen_cache_enabled")
	}

	if cfg.RabbitMQ.URL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQ)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		a.closers = append(a.closers, func() { _ = pub.Close() })
		svcOpts = append(svcOpts, service.WithPublisher(pub))
		lg.Info("rabbitmq_publisher_enabled", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}

	a.svc = service.New(store, coordinator, *cfg, svcOpts...)
	lg.Info("service_initialized")

	return a, nil
}

// newTransport выбирает прямой или relay-транспорт.
func newTransport(cfg *config.Config) (fetcher.Transport, error) {
	client := &http.Client{Timeout: cfg.Fetcher.Timeout}

	if cfg.Relay.Enabled {
		return fetcher.NewRelay(client, cfg.Relay.Endpoint, cfg.Relay.APIKey, cfg.Relay.Browser)
	}

	return fetcher.NewDirect(client), nil
}

// Close закрывает ресурсы в обратном порядке. Повторный вызов безопасен.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func listen(addr string) (net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return lis, nil
}
