// storage определяет контракты доступа к хранилищу harvester-а.
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/storage_mock.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor - битый/чужой page_token (курсор пагинации).
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrConflict — повторная запись сущности, которая должна быть уникальной.
	ErrConflict = errors.New("conflict")
)

// ListingStorage описывает операции над карточками.
type ListingStorage interface {
	// SaveListings сохраняет пачку карточек с upsert по ID провайдера.
	// first_seen_at не меняется, last_seen_at и last_run_id обновляются.
	SaveListings(ctx context.Context, runID uuid.UUID, items []models.Listing, seenAt time.Time) error
	// ListListings возвращает страницу карточек, отсортированных по last_seen_at.
	// При некорректном page_token должна вернуться ошибка ErrInvalidCursor.
	ListListings(ctx context.Context, opts models.ListOptions) (*models.Page, error)
	// ListingByID возвращает карточку по ID провайдера. Если нет — ErrNotFound.
	ListingByID(ctx context.Context, id string) (*models.StoredListing, error)
}

// RunStorage описывает операции над сводками харвестов.
type RunStorage interface {
	// SaveRun сохраняет сводку. Повтор того же ID — ErrConflict.
	SaveRun(ctx context.Context, run models.Run) error
	// RunByID возвращает сводку. Если нет — ErrNotFound.
	RunByID(ctx context.Context, id uuid.UUID) (*models.Run, error)
}

// Storage задаёт контракт доступа к хранилищу.
type Storage interface {
	ListingStorage
	RunStorage
	Ping(ctx context.Context) error
	Close()
}
