// service содержит бизнес-логику harvester-а: запуск харвеста,
// сохранение результатов, передачу карточек на обогащение и выборки.
package service

//go:generate mockgen -source=service.go -destination=../../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-maps-harvester/internal/config"
	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/queue/rabbitmq"
	"github.com/pribylovaa/go-maps-harvester/internal/storage"
)

var (
	// ErrNotFound — сущность отсутствует.
	// Транспорт: 404.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor — битый/чужой page_token.
	// Транспорт: 400.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidArgument - некорректные входные аргументы.
	// Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream — харвест не удалось начать или relay отверг ключ.
	// Транспорт: 502.
	ErrUpstream = errors.New("upstream failure")
)

// Harvester выполняет один проход по выдаче (harvest.Coordinator).
type Harvester interface {
	Harvest(ctx context.Context, req models.HarvestRequest) (*models.HarvestResult, error)
}

// SeenCache отсеивает карточки, уже переданные на обогащение (cache.SeenCache).
type SeenCache interface {
	MarkSeen(ctx context.Context, ids []string) ([]string, error)
}

// EnrichPublisher передаёт карточки на обогащение (rabbitmq.Publisher).
type EnrichPublisher interface {
	PublishEnrichTasks(ctx context.Context, tasks []rabbitmq.EnrichTask) (int, error)
}

// Service — описывает бизнес-логику harvester-а.
type Service struct {
	storage   storage.Storage
	harvester Harvester
	seen      SeenCache
	publisher EnrichPublisher
	cfg       config.Config

	now   func() time.Time
	newID func() uuid.UUID
}

// Option настраивает Service.
type Option func(*Service)

// WithSeenCache подключает кэш уже опубликованных карточек.
func WithSeenCache(c SeenCache) Option {
	return func(s *Service) { s.seen = c }
}

// WithPublisher подключает очередь обогащения.
func WithPublisher(p EnrichPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, harvester Harvester, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		storage:   storage,
		harvester: harvester,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ready проверяет доступность хранилища.
func (s *Service) Ready(ctx context.Context) error {
	return s.storage.Ping(ctx)
}
