package postgres

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/storage"
)

// SaveListings сохраняет пачку карточек с upsert по ID провайдера.
//
// Политика обновления:
//   - name/data/main_category/website/rating — всегда берутся из свежей выдачи;
//   - first_seen_at — не меняется;
//   - last_seen_at/last_run_id — обновляются всегда.
func (s *Storage) SaveListings(ctx context.Context, runID uuid.UUID, items []models.Listing, seenAt time.Time) error {
	const op = "storage.postgres.SaveListings"

	if len(items) == 0 {
		return nil
	}

	seenAt = seenAt.UTC()

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
		INSERT INTO listings (id, name, main_category, website, rating, data, last_run_id, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE
		SET
		name = EXCLUDED.name,
		main_category = EXCLUDED.main_category,
		website = EXCLUDED.website,
		rating = EXCLUDED.rating,
		data = EXCLUDED.data,
		last_run_id = EXCLUDED.last_run_id,
		last_seen_at = EXCLUDED.last_seen_at
		`, item.ID, item.Name, item.MainCategory, item.Website, item.Rating, item, runID, seenAt)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("%s: batch item %d: %w", op, i, err)
		}
	}

	return nil
}

// ListListings возвращает страницу карточек с курсорной пагинацией.
// Сортировка фиксирована: last_seen_at DESC, id DESC.
// page_token — непрозрачная строка (base64url).
// При некорректном токене возвращает storage.ErrInvalidCursor.
func (s *Storage) ListListings(ctx context.Context, opts models.ListOptions) (*models.Page, error) {
	const op = "storage.postgres.ListListings"

	limit := opts.Limit
	if limit <= 0 {
		limit = 1
	}

	var (
		rows pgx.Rows
		err  error
	)

	if opts.PageToken == "" {
		rows, err = s.db.Query(ctx, `
		SELECT data, last_seen_at
		FROM listings
		ORDER BY last_seen_at DESC, id DESC
		LIMIT $1
		`, limit)
	} else {
		seenCur, idCur, decErr := decodePageToken(opts.PageToken)
		if decErr != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}

		rows, err = s.db.Query(ctx, `
		SELECT data, last_seen_at
		FROM listings
		WHERE (last_seen_at, id) < ($1, $2)
		ORDER BY last_seen_at DESC, id DESC
		LIMIT $3
		`, seenCur, idCur, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	page := models.Page{Items: []models.Listing{}}
	var lastSeen time.Time

	for rows.Next() {
		var listing models.Listing
		if scanErr := rows.Scan(&listing, &lastSeen); scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		page.Items = append(page.Items, listing)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	// Курсор следующей страницы — по последнему элементу полной страницы.
	if l := len(page.Items); l > 0 && int32(l) == limit {
		page.NextPageToken = encodePageToken(lastSeen, page.Items[l-1].ID)
	}

	return &page, nil
}

// ListingByID возвращает карточку по ID провайдера.
// Если запись не найдена — storage.ErrNotFound.
func (s *Storage) ListingByID(ctx context.Context, id string) (*models.StoredListing, error) {
	const op = "storage.postgres.ListingByID"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var out models.StoredListing
	err := s.db.QueryRow(ctx, `
	SELECT data, first_seen_at, last_seen_at
	FROM listings
	WHERE id = $1
	`, id).Scan(&out.Listing, &out.FirstSeenAt, &out.LastSeenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.FirstSeenAt = out.FirstSeenAt.UTC()
	out.LastSeenAt = out.LastSeenAt.UTC()

	return &out, nil
}

// encodePageToken кодирует пару ключей страницы в непрозрачный токен для клиента.
func encodePageToken(lastSeenAt time.Time, id string) string {
	raw := fmt.Sprintf("%d|%s", lastSeenAt.UTC().UnixNano(), id)

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodePageToken декодирует токен обратно в пару ключей.
func decodePageToken(token string) (time.Time, string, error) {
	res, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return time.Time{}, "", err
	}

	ts, id, ok := strings.Cut(string(res), "|")
	if !ok || id == "" {
		return time.Time{}, "", errors.New("bad token format")
	}

	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, "", err
	}

	return time.Unix(0, n).UTC(), id, nil
}
