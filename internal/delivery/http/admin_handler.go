package http

import (
	"net/http"

	"github.com/tair/pos-core/pkg/logger"
)

// Resync handles POST /api/admin/resync
// @Summary Replace every mirror's content with the local records
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/admin/resync [post]
func (h *Handler) Resync(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Resync(r.Context()); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Resync failed")
		respondJSON(w, http.StatusBadGateway, Response{Error: err.Error(), Data: h.sync.MirrorStatus()})
		return
	}
	respondData(w, http.StatusOK, "Mirrors resynchronized", h.sync.MirrorStatus())
}

// SyncStatus handles GET /api/admin/sync
// @Summary Replication state of every mirror
// @Description Pending writes are retried before the state is reported
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response
// @Router /api/admin/sync [get]
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	flushed, err := h.sync.Flush(r.Context())
	resp := Response{Success: true, Data: h.sync.MirrorStatus()}
	if flushed > 0 {
		resp.Message = "Delivered pending writes"
	}
	if err != nil {
		resp.Warning = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}
