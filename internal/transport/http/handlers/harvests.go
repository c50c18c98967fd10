package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	apierrors "github.com/pribylovaa/go-maps-harvester/internal/transport/http/errors"
)

// harvestRequest — тело POST /harvests.
type harvestRequest struct {
	Query      string  `json:"query"`
	MaxResults int     `json:"max_results"`
	MinRating  float64 `json:"min_rating"`
}

// CreateHarvest синхронно выполняет харвест и возвращает сводку с карточками.
func (h *Handlers) CreateHarvest(w http.ResponseWriter, r *http.Request) {
	var req harvestRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("body"))
		return
	}

	rep, err := h.Service.Run(r.Context(), models.HarvestRequest{
		Query:      req.Query,
		MaxResults: req.MaxResults,
		MinRating:  req.MinRating,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Location", "/harvests/"+rep.Run.ID.String())
	writeJSON(w, http.StatusCreated, rep)
}

func (h *Handlers) GetHarvest(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.RunByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}
