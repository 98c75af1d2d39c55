package handlers

import (
	"net/http"
	"strconv"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
)

// GetActivity returns the org's recent activity feed, newest first.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if h.redis == nil {
		h.Error(w, http.StatusServiceUnavailable, "activity feed not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			h.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	activities, err := h.redis.RecentActivities(r.Context(), user.OrgID, limit)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "activity fetch failed")
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{"activity": activities})
}
