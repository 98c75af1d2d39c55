package handlers

import (
	"net/http"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
)

// MemberStatus represents one org member's presence.
type MemberStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
}

// Online lists org members with their live presence status.
func (h *Handler) Online(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	users, err := h.db.ListUsers(r.Context(), user.OrgID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "member list failed")
		return
	}

	members := make([]MemberStatus, 0, len(users))
	for _, u := range users {
		online := false
		if h.redis != nil {
			online = h.redis.IsOnline(r.Context(), u.ID)
		}
		members = append(members, MemberStatus{
			ID:     u.ID.String(),
			Name:   u.Name,
			Online: online,
		})
	}

	h.JSON(w, http.StatusOK, map[string]any{"members": members})
}
