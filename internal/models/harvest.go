package models

import (
	"time"

	"github.com/google/uuid"
)

// HarvestRequest — параметры одного прохода по выдаче.
type HarvestRequest struct {
	// Query — поисковый запрос, например "coffee in Lisbon".
	Query string `json:"query"`
	// MaxResults — бюджет карточек; управляет только числом запрошенных страниц.
	MaxResults int `json:"max_results"`
	// MinRating — фильтр минимальной оценки; 0 — без фильтра.
	MinRating float64 `json:"min_rating"`
}

// HarvestResult — итог координатора.
//
// Partial == true, если хотя бы одна страница не была получена/декодирована
// или адрес пагинации оказался в неизвестном формате. Без флага нельзя
// отличить «результатов меньше» от «часть страниц потеряна».
type HarvestResult struct {
	Listings       []Listing
	PagesScheduled int
	FailedPages    int
	Partial        bool
}

// Run — сохранённая сводка одного харвеста.
type Run struct {
	ID             uuid.UUID `json:"id"`
	Query          string    `json:"query"`
	MaxResults     int       `json:"max_results"`
	MinRating      float64   `json:"min_rating"`
	Listings       int       `json:"listings"`
	PagesScheduled int       `json:"pages_scheduled"`
	FailedPages    int       `json:"failed_pages"`
	Partial        bool      `json:"partial"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// RunReport — сводка харвеста вместе с собранными карточками.
type RunReport struct {
	Run      Run       `json:"run"`
	Listings []Listing `json:"listings"`
}
