// handlers — REST-обработчики HTTP API харвестера.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/service"
)

// Service — операции сервисного слоя, доступные через HTTP.
type Service interface {
	Run(ctx context.Context, req models.HarvestRequest) (*models.RunReport, error)
	RunByID(ctx context.Context, id string) (*models.Run, error)
	ListListings(ctx context.Context, opts models.ListOptions) (*models.Page, error)
	ListingByID(ctx context.Context, id string) (*models.StoredListing, error)
	Ready(ctx context.Context) error
}

// Handlers агрегирует зависимости.
type Handlers struct {
	Service Service
}

func New(s Service) *Handlers {
	return &Handlers{Service: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — локальная ошибка парсинга -> 400.
func errInvalidArgument(what string) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidArgument, what)
}
