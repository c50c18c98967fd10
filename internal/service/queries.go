package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
	"github.com/pribylovaa/go-maps-harvester/internal/storage"
)

// ListListings возвращает страницу карточек.
//
// Лимиты:
//   - если opts.Limit <= 0 — используется cfg.LimitsConfig.Default;
//   - если opts.Limit > cfg.LimitsConfig.Max — используется Max.
//
// Ошибки:
//   - storage.ErrInvalidCursor -> ErrInvalidCursor;
//   - прочие ошибки оборачиваются.
func (s *Service) ListListings(ctx context.Context, opts models.ListOptions) (*models.Page, error) {
	const op = "service.ListListings"

	lg := log.From(ctx)

	limit := opts.Limit
	switch {
	case limit <= 0:
		limit = s.cfg.LimitsConfig.Default
	case limit > s.cfg.LimitsConfig.Max:
		limit = s.cfg.LimitsConfig.Max
	}
	opts.Limit = limit

	lg.Info("list_listings_request",
		slog.String("op", op),
		slog.Int("limit", int(limit)),
		slog.Bool("has_token", opts.PageToken != ""),
	)

	page, err := s.storage.ListListings(ctx, opts)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			lg.Warn("list_listings_invalid_cursor", slog.String("op", op))
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCursor)
		}

		lg.Error("list_listings_storage_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("list_listings_ok",
		slog.String("op", op),
		slog.Int("count", len(page.Items)),
		slog.Bool("has_next", page.NextPageToken != ""),
	)

	return page, nil
}

// ListingByID возвращает карточку по ID провайдера.
func (s *Service) ListingByID(ctx context.Context, id string) (*models.StoredListing, error) {
	const op = "service.ListingByID"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	item, err := s.storage.ListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("listing_by_id_storage_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// RunByID возвращает сводку харвеста. Невалидный UUID — ErrNotFound.
func (s *Service) RunByID(ctx context.Context, id string) (*models.Run, error) {
	const op = "service.RunByID"

	runID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	run, err := s.storage.RunByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("run_by_id_storage_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return run, nil
}
