package handlers

import (
	"net/http"
)

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	TotalUsers         int64 `json:"total_users"`
	TotalRooms         int64 `json:"total_rooms"`
	TotalMessages      int64 `json:"total_messages"`
	TotalNotifications int64 `json:"total_notifications"`
}

// Stats returns workspace-wide aggregate counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := h.db.CountUsers(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count users")
		return
	}

	totalRooms, err := h.db.CountRooms(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count rooms")
		return
	}

	totalMessages, err := h.db.CountMessages(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count messages")
		return
	}

	totalNotifications, err := h.db.CountNotifications(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:         totalUsers,
		TotalRooms:         totalRooms,
		TotalMessages:      totalMessages,
		TotalNotifications: totalNotifications,
	})
}
