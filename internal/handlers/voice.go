package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Yug-More/Parallel-AI/internal/api/middleware"
	"github.com/Yug-More/Parallel-AI/internal/chat"
	"github.com/Yug-More/Parallel-AI/internal/events"
	"github.com/Yug-More/Parallel-AI/internal/metrics"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

// TranscriptRequest represents a finished voice call or SMS thread
// pushed into a room. The telephony provider is opaque to the core: it
// hands over text, nothing else. Source is "voice" (default) or "sms";
// SMS ingest carries the originating phone number.
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary,omitempty"`
	Source     string `json:"source,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// IngestTranscript appends a voice-call transcript to a room's log and
// records a matching activity entry.
func (h *Handler) IngestTranscript(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room, ok := h.roomForUser(w, r, user)
	if !ok {
		return
	}

	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	transcript := strings.TrimSpace(req.Transcript)
	if transcript == "" {
		h.Error(w, http.StatusBadRequest, "empty transcript")
		return
	}

	senderID := models.VoiceSender(user.ID)
	senderName := fmt.Sprintf("%s (voice)", user.Name)
	label := "Call"
	switch req.Source {
	case "", "voice":
	case "sms":
		phone := strings.TrimSpace(req.Phone)
		if phone == "" {
			h.Error(w, http.StatusBadRequest, "sms ingest requires phone")
			return
		}
		senderID = models.SMSSender(phone)
		senderName = fmt.Sprintf("%s (sms)", user.Name)
		label = "SMS"
	default:
		h.Error(w, http.StatusBadRequest, "source must be voice or sms")
		return
	}

	content := fmt.Sprintf("%s transcript:\n%s", label, transcript)
	if summary := strings.TrimSpace(req.Summary); summary != "" {
		content = fmt.Sprintf("%s summary: %s\n\n%s", label, summary, content)
	}

	msg := &models.Message{
		RoomID:     room.ID,
		UserID:     user.ID,
		SenderID:   senderID,
		SenderName: senderName,
		Role:       models.RoleUser,
		Content:    content,
	}
	if err := h.db.CreateMessage(r.Context(), msg); err != nil {
		h.logger.Error().Err(err).Msg("transcript persist failed")
		h.Error(w, http.StatusInternalServerError, "transcript save failed")
		return
	}

	activitySummary := strings.TrimSpace(req.Summary)
	if activitySummary == "" {
		activitySummary = "finished a voice call"
		if req.Source == "sms" {
			activitySummary = "wrapped up an SMS thread"
		}
	}
	if h.redis != nil {
		act := &models.Activity{
			UserID:   user.ID.String(),
			UserName: user.Name,
			Summary:  chat.ActivitySummary(activitySummary),
		}
		if err := h.redis.AddActivity(r.Context(), room.OrgID, act); err != nil {
			h.logger.Warn().Err(err).Msg("transcript activity record failed")
		}
	}

	if err := h.broker.Publish(r.Context(), events.Event{
		Type:   events.TypeMessageCreated,
		RoomID: room.ID,
		Data:   events.Marshal(msg),
	}); err != nil {
		h.logger.Warn().Err(err).Msg("transcript event publish failed")
	}

	metrics.TranscriptsIngested.Inc()
	h.JSON(w, http.StatusCreated, msg)
}
