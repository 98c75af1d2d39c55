package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
	"github.com/Yug-More/Parallel-AI/internal/chat"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProjectSummary string `json:"project_summary"`
	MemorySummary  string `json:"memory_summary"`
	SummaryVersion int64  `json:"summary_version"`
	SummaryUpdates int64  `json:"summary_updates"`
	CreatedAt      int64  `json:"created_at"`
}

func roomResponse(room *models.Room) RoomResponse {
	return RoomResponse{
		ID:             room.ID.String(),
		Name:           room.Name,
		ProjectSummary: room.ProjectSummary,
		MemorySummary:  room.MemorySummary,
		SummaryVersion: room.SummaryVersion,
		SummaryUpdates: room.SummaryUpdates,
		CreatedAt:      room.CreatedAt.UnixMilli(),
	}
}

// CreateRoom handles room creation within the caller's org.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	room, err := h.db.CreateRoom(r.Context(), user.OrgID, name)
	if err != nil {
		h.logger.Error().Err(err).Msg("room create failed")
		h.Error(w, http.StatusInternalServerError, "room create failed")
		return
	}

	h.JSON(w, http.StatusCreated, roomResponse(room))
}

// ListRooms returns the caller's org rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rooms, err := h.db.ListRooms(r.Context(), user.OrgID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "room list failed")
		return
	}

	out := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		out = append(out, roomResponse(&rooms[i]))
	}
	h.JSON(w, http.StatusOK, map[string]any{"rooms": out})
}

// GetRoom returns one room with its summary fields.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room, ok := h.roomForUser(w, r, user)
	if !ok {
		return
	}
	h.JSON(w, http.StatusOK, roomResponse(room))
}

// GetRoomMessages returns a room's message log, oldest first.
// ?limit=N returns only the most recent N.
func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room, ok := h.roomForUser(w, r, user)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	messages, err := h.db.ListRoomMessages(r.Context(), room.ID, limit)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "message list failed")
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"room":     roomResponse(room),
		"messages": messages,
	})
}

// GetRoomTranscript returns the room's summary state plus the full ordered
// message log, the same shape the chat endpoint returns after a turn.
func (h *Handler) GetRoomTranscript(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room, ok := h.roomForUser(w, r, user)
	if !ok {
		return
	}

	messages, err := h.db.ListRoomMessages(r.Context(), room.ID, 0)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "message list failed")
		return
	}

	h.JSON(w, http.StatusOK, chat.Transcript{
		RoomID:         room.ID,
		ProjectSummary: room.ProjectSummary,
		MemorySummary:  room.MemorySummary,
		SummaryVersion: room.SummaryVersion,
		SummaryUpdates: room.SummaryUpdates,
		Messages:       messages,
	})
}

// roomForUser loads the {id} room and enforces org scoping. Writes the
// error response itself on failure.
func (h *Handler) roomForUser(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Room, bool) {
	roomID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid room id")
		return nil, false
	}

	room, err := h.db.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "room lookup failed")
		return nil, false
	}
	if room == nil || room.OrgID != user.OrgID {
		h.Error(w, http.StatusNotFound, "room not found")
		return nil, false
	}
	return room, true
}
