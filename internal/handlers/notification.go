package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
)

// ListNotifications returns the caller's notifications, newest first.
// ?unread=true filters to unread only.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.db.ListNotifications(r.Context(), user.ID, unreadOnly)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "notification list failed")
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.db.MarkNotificationRead(r.Context(), id, user.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "notification update failed")
		return
	}
	h.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
