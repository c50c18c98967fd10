package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/pribylovaa/go-maps-harvester/internal/config"
	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
	grpctransport "github.com/pribylovaa/go-maps-harvester/internal/transport/grpc"
	httptransport "github.com/pribylovaa/go-maps-harvester/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var (
		configPath string
		query      string
		maxResults int
		minRating  float64
	)
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.StringVar(&query, "query", "", "run a single harvest for this query and print listings as JSON lines")
	flag.IntVar(&maxResults, "max-results", 0, "max listings for --query (0 = harvest.max_results)")
	flag.Float64Var(&minRating, "min-rating", 0, "minimum rating filter for --query")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	lg := setupLogger(cfg.Env)
	slog.SetDefault(lg)
	lg.Info("starting harvester", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	rootCtx = log.Into(rootCtx, lg)

	a, err := newApp(rootCtx, cfg)
	if err != nil {
		lg.Error("app_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	if query != "" {
		if err := runOnce(rootCtx, a, models.HarvestRequest{
			Query:      query,
			MaxResults: maxResults,
			MinRating:  minRating,
		}); err != nil {
			lg.Error("harvest_failed", slog.String("err", err.Error()))
			a.Close()
			os.Exit(1)
		}
		return
	}

	if err := serve(rootCtx, a, cfg, lg); err != nil {
		lg.Error("serve_failed", slog.String("err", err.Error()))
		a.Close()
		os.Exit(1)
	}

	lg.Info("service_stopped")
}

// runOnce выполняет один харвест и печатает карточки в stdout по одной на строку.
func runOnce(ctx context.Context, a *app, req models.HarvestRequest) error {
	rep, err := a.svc.Run(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, it := range rep.Listings {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}

	log.From(ctx).Info("harvest_done",
		slog.String("run_id", rep.Run.ID.String()),
		slog.Int("listings", rep.Run.Listings),
		slog.Bool("partial", rep.Run.Partial),
	)

	return nil
}

// serve поднимает HTTP API и gRPC health и ждёт сигнала завершения.
func serve(ctx context.Context, a *app, cfg *config.Config, lg *slog.Logger) error {
	httpSrv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: httptransport.NewRouter(a.svc, httptransport.Options{
			Logger:  lg,
			Timeout: cfg.Timeouts.Service,
			Metrics: a.metrics,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv, hs := grpctransport.NewServer(grpctransport.Options{
		Logger:     lg,
		Timeout:    cfg.Timeouts.Service,
		Reflection: cfg.Env == envLocal || cfg.Env == envDev,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("http_listen_start", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := listen(cfg.GRPC.Addr())
		if err != nil {
			return err
		}
		lg.Info("grpc_listen_start", slog.String("addr", cfg.GRPC.Addr()))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		grpctransport.WatchReadiness(gctx, hs, a.svc.Ready, 10*time.Second)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutdown_requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		done := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
			lg.Info("grpc_stopped")
		case <-shutdownCtx.Done():
			lg.Warn("grpc_force_stop")
			grpcSrv.Stop()
		}

		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var lg *slog.Logger

	switch env {
	case envLocal:
		lg = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		lg = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		lg = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		lg = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return lg
}
