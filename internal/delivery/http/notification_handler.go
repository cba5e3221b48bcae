package http

import (
	"net/http"

	"github.com/tair/pos-core/internal/notification"
)

// Notifications handles GET /api/notifications?filter=
// @Summary Notification feed of the signed in operator
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param filter query string false "all, order, expense, alert or system"
// @Success 200 {object} Response
// @Router /api/notifications [get]
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	filter, err := notification.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	feed, err := h.feed.Feed(r.Context(), operator(r), filter)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", feed)
}

// MarkRead handles POST /api/notifications/{id}/read
// @Summary Mark one notification read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} Response
// @Router /api/notifications/{id}/read [post]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}
	if err := h.feed.MarkRead(r.Context(), operator(r), id); err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "Marked read", nil)
}

// MarkAllRead handles POST /api/notifications/read-all?filter=
// @Summary Mark every visible notification read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param filter query string false "all, order, expense, alert or system"
// @Success 200 {object} Response
// @Router /api/notifications/read-all [post]
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	filter, err := notification.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	n, err := h.feed.MarkAllRead(r.Context(), operator(r), filter)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "Marked read", map[string]int{"marked": n})
}
