package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

// Livez — процесс жив.
func (h *Handlers) Livez(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz — хранилище доступно.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Ready(r.Context()); err != nil {
		log.From(r.Context()).Warn("readyz_failed", slog.String("err", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
