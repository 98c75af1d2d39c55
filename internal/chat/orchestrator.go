package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yug-More/Parallel-AI/internal/events"
	"github.com/Yug-More/Parallel-AI/internal/llm"
	"github.com/Yug-More/Parallel-AI/internal/metrics"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

// Errors surfaced to callers. Anything else is an internal failure.
var (
	ErrEmptyMessage = errors.New("empty message")
	ErrRoomNotFound = errors.New("room not found")
	ErrUnknownAgent = errors.New("unknown agent")
)

// fallbackReply is persisted as the assistant turn when every model
// call for a request failed. The turn still completes: the user message
// was durably stored before generation started.
const fallbackReply = "Something went wrong. Try again."

// Mode selects how an inbound message is routed.
type Mode string

const (
	ModeSelf     Mode = "self"
	ModeTeammate Mode = "teammate"
	ModeTeam     Mode = "team"
)

// ParseMode validates a mode string, defaulting empty to self.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeSelf, ModeTeammate, ModeTeam:
		return Mode(s), true
	case "":
		return ModeSelf, true
	}
	return "", false
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	UpdateRoomSummary(ctx context.Context, id uuid.UUID, summary string) error
	UpdateRoomOrg(ctx context.Context, id, orgID uuid.UUID) error
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error)
	LatestAssistantMessage(ctx context.Context, roomID uuid.UUID) (*models.Message, error)
	CreateMemoryRecord(ctx context.Context, rec *models.MemoryRecord) error
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetUserByName(ctx context.Context, orgID uuid.UUID, name string) (*models.User, error)
}

// ActivityLog records and replays the cross-team activity feed.
type ActivityLog interface {
	AddActivity(ctx context.Context, orgID uuid.UUID, act *models.Activity) error
	RecentActivities(ctx context.Context, orgID uuid.UUID, limit int) ([]models.Activity, error)
}

// AskRequest is one inbound user message.
type AskRequest struct {
	RoomID      uuid.UUID
	User        *models.User
	Mode        Mode
	Content     string
	TargetAgent string
}

// Transcript is the room state returned after a completed turn.
type Transcript struct {
	RoomID         uuid.UUID        `json:"room_id"`
	ProjectSummary string           `json:"project_summary"`
	MemorySummary  string           `json:"memory_summary"`
	SummaryVersion int64            `json:"summary_version"`
	SummaryUpdates int64            `json:"summary_updates"`
	Reply          *models.Message  `json:"reply"`
	Messages       []models.Message `json:"messages"`
}

// Orchestrator sequences one inbound message through routing, draft
// generation, synthesis and summary application. It is the only writer
// of room summary fields.
type Orchestrator struct {
	store    Store
	activity ActivityLog
	broker   events.Broker
	drafts   *DraftGenerator
	synth    *Synthesizer
	roster   []llm.AgentID
	log      zerolog.Logger
}

// NewOrchestrator wires the orchestration core.
func NewOrchestrator(store Store, activity ActivityLog, broker events.Broker, pool *llm.Pool, roster []llm.AgentID, log zerolog.Logger) *Orchestrator {
	if len(roster) == 0 {
		roster = llm.DefaultRoster
	}
	return &Orchestrator{
		store:    store,
		activity: activity,
		broker:   broker,
		drafts:   NewDraftGenerator(pool),
		synth:    NewSynthesizer(pool),
		roster:   roster,
		log:      log,
	}
}

// Ask runs one full orchestration pass and returns the updated room
// transcript. The user message is durably persisted before any model
// call; model failures degrade to a fallback assistant reply rather
// than failing the turn.
func (o *Orchestrator) Ask(ctx context.Context, req AskRequest) (*Transcript, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	room, err := o.store.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	// A room created before its org settled can carry a stale org ref;
	// adopt the caller's org and keep going.
	if room.OrgID != req.User.OrgID {
		o.log.Warn().
			Str("room_id", room.ID.String()).
			Str("room_org", room.OrgID.String()).
			Str("user_org", req.User.OrgID.String()).
			Msg("room org mismatch, reassigning to caller's org")
		if err := o.store.UpdateRoomOrg(ctx, room.ID, req.User.OrgID); err != nil {
			return nil, err
		}
		room.OrgID = req.User.OrgID
	}

	// Resolve routing before persisting anything so a bad target fails
	// the request cleanly.
	agents, err := o.resolveAgents(req)
	if err != nil {
		return nil, err
	}

	userMsg := &models.Message{
		RoomID:     room.ID,
		UserID:     req.User.ID,
		SenderID:   models.UserSender(req.User.ID),
		SenderName: req.User.Name,
		Role:       models.RoleUser,
		Content:    content,
	}
	if err := o.store.CreateMessage(ctx, userMsg); err != nil {
		return nil, err
	}
	o.publish(ctx, events.Event{
		Type:   events.TypeMessageCreated,
		RoomID: room.ID,
		Data:   events.Marshal(userMsg),
	})

	metrics.ChatRequests.WithLabelValues(string(req.Mode)).Inc()

	var reply *models.Message
	if handled, r := o.tryConfirmation(ctx, room, req.User, content); handled {
		reply = r
	} else {
		reply, err = o.generate(ctx, room, req.User, req.Mode, agents, content)
		if err != nil {
			return nil, err
		}
	}

	o.recordActivity(ctx, room.OrgID, req.User, content)

	return o.transcript(ctx, room.ID, reply)
}

// resolveAgents maps a request to the agents that will draft.
func (o *Orchestrator) resolveAgents(req AskRequest) ([]llm.AgentID, error) {
	if req.Mode == ModeTeam {
		return o.roster, nil
	}

	if req.TargetAgent != "" {
		agent, ok := llm.ParseAgentID(req.TargetAgent)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, req.TargetAgent)
		}
		return []llm.AgentID{agent}, nil
	}

	if req.Mode == ModeSelf {
		if agent, ok := llm.ParseAgentID(req.User.Name); ok {
			return []llm.AgentID{agent}, nil
		}
	}
	return []llm.AgentID{llm.DefaultAgent}, nil
}

// tryConfirmation is the deterministic outreach shortcut: an approval
// phrase following a shown draft delivers that draft verbatim as a
// notification, with zero model calls. Returns handled=false when the
// turn should proceed to normal generation.
func (o *Orchestrator) tryConfirmation(ctx context.Context, room *models.Room, user *models.User, content string) (bool, *models.Message) {
	if !IsConfirmation(content) {
		return false, nil
	}

	prior, err := o.store.LatestAssistantMessage(ctx, room.ID)
	if err != nil || prior == nil {
		return false, nil
	}

	name, text, ok := ExtractOutreachDraft(prior.Content)
	if !ok {
		return false, nil
	}

	var replyText string
	recipient, err := o.store.GetUserByName(ctx, room.OrgID, name)
	if err == nil && recipient != nil {
		n := &models.Notification{
			UserID:  recipient.ID,
			Message: text,
		}
		if err := o.store.CreateNotification(ctx, n); err != nil {
			o.log.Error().Err(err).Str("recipient", name).Msg("outreach notification failed")
			return false, nil
		}
		o.publish(ctx, events.Event{
			Type:   events.TypeNotification,
			RoomID: room.ID,
			Data:   events.Marshal(n),
		})
		replyText = OutreachConfirmedReply(recipient.Name, text)
		metrics.OutreachDeliveries.Inc()
	} else {
		replyText = OutreachUnresolvedReply(name, text)
	}

	reply := o.agentMessage(room.ID, user, replyText)
	if err := o.store.CreateMessage(ctx, reply); err != nil {
		o.log.Error().Err(err).Msg("outreach reply persist failed")
		return false, nil
	}
	o.publish(ctx, events.Event{
		Type:   events.TypeMessageCreated,
		RoomID: room.ID,
		Data:   events.Marshal(reply),
	})
	return true, reply
}

// generate runs the model-backed path: context assembly, drafting and,
// in team mode, coordinator synthesis with summary application.
func (o *Orchestrator) generate(ctx context.Context, room *models.Room, user *models.User, mode Mode, agents []llm.AgentID, content string) (*models.Message, error) {
	history, err := o.store.ListRoomMessages(ctx, room.ID, maxContextMessages)
	if err != nil {
		return nil, err
	}
	recent, err := o.activity.RecentActivities(ctx, room.OrgID, maxContextActivities)
	if err != nil {
		o.log.Warn().Err(err).Msg("activity fetch failed, continuing without")
		recent = nil
	}
	reverseActivities(recent)

	sysCtx := BuildContext(room, user.Name, history, recent)

	if mode == ModeTeam {
		return o.generateTeam(ctx, room, user, agents, content, sysCtx)
	}
	return o.generateSingle(ctx, room, user, agents[0], content, sysCtx)
}

func (o *Orchestrator) generateSingle(ctx context.Context, room *models.Room, user *models.User, agent llm.AgentID, content, sysCtx string) (*models.Message, error) {
	draft, err := o.drafts.GenerateOne(ctx, agent, user.Name, content, sysCtx)
	if err != nil {
		return o.degrade(ctx, room, user, err)
	}

	reply := o.agentMessage(room.ID, user, draft)
	if err := o.store.CreateMessage(ctx, reply); err != nil {
		return nil, err
	}
	o.publish(ctx, events.Event{
		Type:   events.TypeMessageCreated,
		RoomID: room.ID,
		Data:   events.Marshal(reply),
	})
	return reply, nil
}

func (o *Orchestrator) generateTeam(ctx context.Context, room *models.Room, user *models.User, roster []llm.AgentID, content, sysCtx string) (*models.Message, error) {
	drafts, err := o.drafts.GenerateTeam(ctx, roster, user.Name, content, sysCtx)
	if err != nil {
		return o.degrade(ctx, room, user, err)
	}

	// Persist drafts in roster order so the log reads the same way the
	// coordinator saw them.
	for _, agent := range roster {
		draftMsg := &models.Message{
			RoomID:     room.ID,
			UserID:     user.ID,
			SenderID:   models.AgentSender(string(agent)),
			SenderName: agent.DisplayName(),
			Role:       models.RoleAssistant,
			Content:    drafts[agent],
		}
		if err := o.store.CreateMessage(ctx, draftMsg); err != nil {
			return nil, err
		}
	}

	result, err := o.synth.Synthesize(ctx, user.Name, content, sysCtx, roster, drafts)
	if err != nil {
		return o.degrade(ctx, room, user, err)
	}

	reply := &models.Message{
		RoomID:     room.ID,
		UserID:     user.ID,
		SenderID:   models.AgentSender(string(llm.AgentCoordinator)),
		SenderName: llm.AgentCoordinator.DisplayName(),
		Role:       models.RoleAssistant,
		Content:    result.Answer,
	}
	if err := o.store.CreateMessage(ctx, reply); err != nil {
		return nil, err
	}
	o.publish(ctx, events.Event{
		Type:   events.TypeMessageCreated,
		RoomID: room.ID,
		Data:   events.Marshal(reply),
	})

	if result.HasSummaryUpdate() {
		if err := o.applySummary(ctx, room, result.SummaryUpdate); err != nil {
			o.log.Error().Err(err).Str("room_id", room.ID.String()).Msg("summary update failed")
		}
	}
	return reply, nil
}

// applySummary writes the coordinator's proposed summary and leaves an
// audit note in agent memory.
func (o *Orchestrator) applySummary(ctx context.Context, room *models.Room, summary string) error {
	if err := o.store.UpdateRoomSummary(ctx, room.ID, summary); err != nil {
		return err
	}
	metrics.SummaryUpdates.Inc()

	roomID := room.ID
	rec := &models.MemoryRecord{
		AgentID: string(llm.AgentCoordinator),
		RoomID:  &roomID,
		Content: "Updated project summary: " + summary,
	}
	if err := o.store.CreateMemoryRecord(ctx, rec); err != nil {
		o.log.Warn().Err(err).Msg("memory audit note failed")
	}

	o.publish(ctx, events.Event{
		Type:   events.TypeSummaryUpdated,
		RoomID: room.ID,
		Data:   events.Marshal(map[string]string{"summary": summary}),
	})
	return nil
}

// degrade handles a provider failure: the turn completes with a
// fallback assistant reply instead of an error, since the user message
// is already durable.
func (o *Orchestrator) degrade(ctx context.Context, room *models.Room, user *models.User, cause error) (*models.Message, error) {
	o.log.Error().Err(cause).Str("room_id", room.ID.String()).Msg("model call failed")
	metrics.ModelErrors.Inc()

	reply := o.agentMessage(room.ID, user, fallbackReply)
	if err := o.store.CreateMessage(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// agentMessage builds an assistant message attributed to the user's
// own agent.
func (o *Orchestrator) agentMessage(roomID uuid.UUID, user *models.User, content string) *models.Message {
	return &models.Message{
		RoomID:     roomID,
		UserID:     user.ID,
		SenderID:   models.AgentSender(user.ID.String()),
		SenderName: fmt.Sprintf("%s's Agent", user.Name),
		Role:       models.RoleAssistant,
		Content:    content,
	}
}

func (o *Orchestrator) recordActivity(ctx context.Context, orgID uuid.UUID, user *models.User, content string) {
	act := &models.Activity{
		UserID:    user.ID.String(),
		UserName:  user.Name,
		Summary:   ActivitySummary(content),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := o.activity.AddActivity(ctx, orgID, act); err != nil {
		o.log.Warn().Err(err).Msg("activity record failed")
	}
}

func (o *Orchestrator) transcript(ctx context.Context, roomID uuid.UUID, reply *models.Message) (*Transcript, error) {
	room, err := o.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	messages, err := o.store.ListRoomMessages(ctx, roomID, 0)
	if err != nil {
		return nil, err
	}

	return &Transcript{
		RoomID:         room.ID,
		ProjectSummary: room.ProjectSummary,
		MemorySummary:  room.MemorySummary,
		SummaryVersion: room.SummaryVersion,
		SummaryUpdates: room.SummaryUpdates,
		Reply:          reply,
		Messages:       messages,
	}, nil
}

func (o *Orchestrator) publish(ctx context.Context, ev events.Event) {
	if o.broker == nil {
		return
	}
	if err := o.broker.Publish(ctx, ev); err != nil {
		o.log.Warn().Err(err).Str("type", ev.Type).Msg("event publish failed")
	}
}

// reverseActivities flips a newest-first feed into context order.
func reverseActivities(acts []models.Activity) {
	for i, j := 0, len(acts)-1; i < j; i, j = i+1, j-1 {
		acts[i], acts[j] = acts[j], acts[i]
	}
}
