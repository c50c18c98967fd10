package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/storage"
)

// SaveRun сохраняет сводку харвеста. Повтор ID — storage.ErrConflict.
func (s *Storage) SaveRun(ctx context.Context, run models.Run) error {
	const op = "storage.postgres.SaveRun"

	_, err := s.db.Exec(ctx, `
	INSERT INTO harvest_runs (id, query, max_results, min_rating, listings, pages_scheduled, failed_pages, partial, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.Query, run.MaxResults, run.MinRating, run.Listings, run.PagesScheduled,
		run.FailedPages, run.Partial, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RunByID возвращает сводку харвеста. Если нет — storage.ErrNotFound.
func (s *Storage) RunByID(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	const op = "storage.postgres.RunByID"

	var run models.Run
	err := s.db.QueryRow(ctx, `
	SELECT id, query, max_results, min_rating, listings, pages_scheduled, failed_pages, partial, started_at, finished_at
	FROM harvest_runs
	WHERE id = $1
	`, id).Scan(
		&run.ID,
		&run.Query,
		&run.MaxResults,
		&run.MinRating,
		&run.Listings,
		&run.PagesScheduled,
		&run.FailedPages,
		&run.Partial,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()

	return &run, nil
}
