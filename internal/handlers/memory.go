package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
	"github.com/Yug-More/Parallel-AI/internal/llm"
)

// GetAgentMemory returns an agent's recent long-term memory records.
// ?room=<uuid> scopes to one room, ?limit=N caps the result.
func (h *Handler) GetAgentMemory(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	agent, ok := llm.ParseAgentID(r.URL.Query().Get("agent"))
	if !ok {
		h.Error(w, http.StatusBadRequest, "unknown agent")
		return
	}

	var roomID *uuid.UUID
	if raw := r.URL.Query().Get("room"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid room id")
			return
		}
		roomID = &id
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			h.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.db.ListAgentMemory(r.Context(), string(agent), roomID, limit)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "memory fetch failed")
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{"records": records})
}
