package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	apierrors "github.com/pribylovaa/go-maps-harvester/internal/transport/http/errors"
)

func (h *Handlers) ListListings(w http.ResponseWriter, r *http.Request) {
	var opts models.ListOptions
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			apierrors.WriteError(w, r, errInvalidArgument("limit"))
			return
		}

		opts.Limit = int32(n)
	}

	opts.PageToken = r.URL.Query().Get("page_token")

	page, err := h.Service.ListListings(r.Context(), opts)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if page.Items == nil {
		page.Items = []models.Listing{}
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.ListingByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}
