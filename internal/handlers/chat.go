package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
	"github.com/Yug-More/Parallel-AI/internal/chat"
)

// ChatRequest represents one inbound chat turn.
type ChatRequest struct {
	RoomID  string `json:"room_id"`
	Mode    string `json:"mode,omitempty"`   // "self" | "teammate" | "team"
	Target  string `json:"target,omitempty"` // agent name for teammate mode
	Content string `json:"content"`
}

// Chat runs one orchestration turn and returns the updated transcript.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid room_id")
		return
	}

	mode, ok := chat.ParseMode(req.Mode)
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid mode")
		return
	}

	transcript, err := h.orch.Ask(r.Context(), chat.AskRequest{
		RoomID:      roomID,
		User:        user,
		Mode:        mode,
		Content:     req.Content,
		TargetAgent: req.Target,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			h.Error(w, http.StatusBadRequest, "empty message")
		case errors.Is(err, chat.ErrRoomNotFound):
			h.Error(w, http.StatusNotFound, "room not found")
		case errors.Is(err, chat.ErrUnknownAgent):
			h.Error(w, http.StatusBadRequest, "unknown agent")
		default:
			h.logger.Error().Err(err).Str("room_id", req.RoomID).Msg("chat turn failed")
			h.Error(w, http.StatusInternalServerError, "chat failed")
		}
		return
	}

	h.JSON(w, http.StatusOK, transcript)
}
