package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-maps-harvester/internal/fetcher"
	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

// Run выполняет харвест по запросу и сохраняет результат.
//
// Поведение:
//   - пустой Query или MinRating вне [0, 5] -> ErrInvalidArgument;
//   - MaxResults <= 0 и MinRating == 0 заменяются значениями из конфигурации;
//   - ошибка первой страницы или отказ relay в доступе -> ErrUpstream;
//   - карточки без ID или Name отбрасываются, дубли по ID схлопываются;
//   - сбои кэша и очереди обогащения только логируются.
func (s *Service) Run(ctx context.Context, req models.HarvestRequest) (*models.RunReport, error) {
	const op = "service.Run"

	req, err := s.normalizeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	run := models.Run{
		ID:         s.newID(),
		Query:      req.Query,
		MaxResults: req.MaxResults,
		MinRating:  req.MinRating,
		StartedAt:  s.now(),
	}

	ctx = log.With(ctx,
		slog.String("run_id", run.ID.String()),
		slog.String("query", run.Query),
	)
	lg := log.From(ctx)

	lg.Info("run_start",
		slog.String("op", op),
		slog.Int("max_results", req.MaxResults),
		slog.Float64("min_rating", req.MinRating),
	)

	res, err := s.harvest(ctx, req)
	if err != nil {
		lg.Error("run_harvest_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	listings := finalizeListings(res.Listings)

	run.Listings = len(listings)
	run.PagesScheduled = res.PagesScheduled
	run.FailedPages = res.FailedPages
	run.Partial = res.Partial
	run.FinishedAt = s.now()

	if err := s.storage.SaveListings(ctx, run.ID, listings, run.FinishedAt); err != nil {
		lg.Error("run_save_listings_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: save listings: %w", op, err)
	}

	if err := s.storage.SaveRun(ctx, run); err != nil {
		lg.Error("run_save_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: save run: %w", op, err)
	}

	s.enrich(ctx, run, listings)

	lg.Info("run_ok",
		slog.String("op", op),
		slog.Int("listings", run.Listings),
		slog.Int("pages_scheduled", run.PagesScheduled),
		slog.Int("failed_pages", run.FailedPages),
		slog.Bool("partial", run.Partial),
	)

	return &models.RunReport{Run: run, Listings: listings}, nil
}

// harvest вызывает координатор без общего дедлайна: первую страницу
// ограничивает browser.timeout, каждую загрузку пагинации — fetcher.timeout.
func (s *Service) harvest(ctx context.Context, req models.HarvestRequest) (*models.HarvestResult, error) {
	res, err := s.harvester.Harvest(ctx, req)
	if err != nil {
		if errors.Is(err, fetcher.ErrRelayAuth) {
			return nil, fmt.Errorf("relay rejected credentials: %w", err)
		}
		return nil, err
	}

	return res, nil
}

func (s *Service) normalizeRequest(req models.HarvestRequest) (models.HarvestRequest, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return req, fmt.Errorf("%w: query is required", ErrInvalidArgument)
	}

	if req.MinRating < 0 || req.MinRating > 5 {
		return req, fmt.Errorf("%w: min_rating must be within [0, 5]", ErrInvalidArgument)
	}

	if req.MaxResults <= 0 {
		req.MaxResults = s.cfg.Harvest.MaxResults
	}

	if req.MinRating == 0 {
		req.MinRating = s.cfg.Harvest.MinRating
	}

	return req, nil
}
