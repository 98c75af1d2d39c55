package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/Yug-More/Parallel-AI/internal/events"
	"github.com/Yug-More/Parallel-AI/internal/llm"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

type fakeStore struct {
	rooms         map[uuid.UUID]*models.Room
	messages      []models.Message
	memories      []models.MemoryRecord
	notifications []models.Notification
	users         []*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{rooms: make(map[uuid.UUID]*models.Room)}
}

func (s *fakeStore) GetRoom(_ context.Context, id uuid.UUID) (*models.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *room
	return &cp, nil
}

func (s *fakeStore) UpdateRoomSummary(_ context.Context, id uuid.UUID, summary string) error {
	room := s.rooms[id]
	room.ProjectSummary = summary
	room.MemorySummary = summary
	room.SummaryVersion++
	room.SummaryUpdates++
	return nil
}

func (s *fakeStore) UpdateRoomOrg(_ context.Context, id, orgID uuid.UUID) error {
	s.rooms[id].OrgID = orgID
	return nil
}

func (s *fakeStore) CreateMessage(_ context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeStore) ListRoomMessages(_ context.Context, roomID uuid.UUID, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *fakeStore) LatestAssistantMessage(_ context.Context, roomID uuid.UUID) (*models.Message, error) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.RoomID == roomID && m.Role == models.RoleAssistant {
			return &m, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateMemoryRecord(_ context.Context, rec *models.MemoryRecord) error {
	s.memories = append(s.memories, *rec)
	return nil
}

func (s *fakeStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *fakeStore) GetUserByName(_ context.Context, orgID uuid.UUID, name string) (*models.User, error) {
	for _, u := range s.users {
		if u.OrgID == orgID && strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return nil, nil
}

type fakeActivity struct {
	entries []models.Activity
}

func (a *fakeActivity) AddActivity(_ context.Context, _ uuid.UUID, act *models.Activity) error {
	a.entries = append(a.entries, *act)
	return nil
}

func (a *fakeActivity) RecentActivities(_ context.Context, _ uuid.UUID, limit int) ([]models.Activity, error) {
	out := a.entries
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	// Newest first, like the Redis feed.
	rev := make([]models.Activity, len(out))
	for i, e := range out {
		rev[len(out)-1-i] = e
	}
	return rev, nil
}

type scriptedCompleter struct {
	reply string
	err   error
	calls int
}

func (c *scriptedCompleter) Complete(_ context.Context, _, _ string, _ float64) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

type fixture struct {
	store    *fakeStore
	activity *fakeActivity
	broker   *events.MemoryBroker
	orch     *Orchestrator
	room     *models.Room
	user     *models.User
	agents   map[llm.AgentID]*scriptedCompleter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	activity := &fakeActivity{}
	broker := events.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	orgID := uuid.New()
	room := &models.Room{ID: uuid.New(), OrgID: orgID, Name: "general"}
	store.rooms[room.ID] = room

	user := &models.User{ID: uuid.New(), OrgID: orgID, Name: "Yug", Email: "yug@example.com"}
	store.users = append(store.users, user)

	agents := map[llm.AgentID]*scriptedCompleter{
		llm.AgentYug:         {reply: "yug draft"},
		llm.AgentSean:        {reply: "sean draft"},
		llm.AgentSeverin:     {reply: "severin draft"},
		llm.AgentNayab:       {reply: "nayab draft"},
		llm.AgentCoordinator: {reply: "merged answer"},
	}
	clients := make(map[llm.AgentID]llm.Completer, len(agents))
	for id, c := range agents {
		clients[id] = c
	}
	pool := llm.NewPool(clients, llm.DefaultAgent)

	orch := NewOrchestrator(store, activity, broker, pool, llm.DefaultRoster, zerolog.Nop())
	return &fixture{
		store:    store,
		activity: activity,
		broker:   broker,
		orch:     orch,
		room:     room,
		user:     user,
		agents:   agents,
	}
}

func (f *fixture) ask(t *testing.T, req AskRequest) *Transcript {
	t.Helper()
	if req.RoomID == uuid.Nil {
		req.RoomID = f.room.ID
	}
	if req.User == nil {
		req.User = f.user
	}
	tr, err := f.orch.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	return tr
}

func TestAskEmptyMessage(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Ask(context.Background(), AskRequest{
		RoomID: f.room.ID, User: f.user, Mode: ModeSelf, Content: "   ",
	})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(f.store.messages) != 0 {
		t.Error("nothing may be persisted for an empty message")
	}
}

func TestAskRoomNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Ask(context.Background(), AskRequest{
		RoomID: uuid.New(), User: f.user, Mode: ModeSelf, Content: "hello",
	})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestAskUnknownAgent(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Ask(context.Background(), AskRequest{
		RoomID: f.room.ID, User: f.user, Mode: ModeTeammate, Content: "hello", TargetAgent: "mallory",
	})
	if !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
	if len(f.store.messages) != 0 {
		t.Error("a bad target must fail before anything is persisted")
	}
}

func TestAskSelfMode(t *testing.T) {
	f := newFixture(t)
	tr := f.ask(t, AskRequest{Mode: ModeSelf, Content: "what's next?"})

	if len(tr.Messages) != 2 {
		t.Fatalf("expected user message + reply, got %d messages", len(tr.Messages))
	}
	userMsg, reply := tr.Messages[0], tr.Messages[1]

	if userMsg.Role != models.RoleUser || userMsg.Content != "what's next?" {
		t.Errorf("unexpected user message: %+v", userMsg)
	}
	if reply.Role != models.RoleAssistant || reply.Content != "yug draft" {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if reply.SenderName != "Yug's Agent" {
		t.Errorf("unexpected reply sender: %q", reply.SenderName)
	}

	// Self mode routes to the user's own agent; no one else is called.
	if f.agents[llm.AgentYug].calls != 1 {
		t.Errorf("expected 1 call to yug, got %d", f.agents[llm.AgentYug].calls)
	}
	if f.agents[llm.AgentCoordinator].calls != 0 {
		t.Error("single-agent mode must not run synthesis")
	}
	if f.agents[llm.AgentSean].calls != 0 {
		t.Error("self mode must not fan out")
	}

	if len(f.activity.entries) != 1 || f.activity.entries[0].Summary != "what's next?" {
		t.Errorf("expected one activity entry, got %+v", f.activity.entries)
	}
}

func TestAskTeammateModeTargets(t *testing.T) {
	f := newFixture(t)
	tr := f.ask(t, AskRequest{Mode: ModeTeammate, Content: "status?", TargetAgent: "severin"})

	if f.agents[llm.AgentSeverin].calls != 1 {
		t.Errorf("expected the targeted agent to be called, got %d", f.agents[llm.AgentSeverin].calls)
	}
	if tr.Reply.Content != "severin draft" {
		t.Errorf("unexpected reply: %q", tr.Reply.Content)
	}
}

func TestAskTeamMode(t *testing.T) {
	f := newFixture(t)
	f.agents[llm.AgentCoordinator].reply = "merged answer\n\nSUMMARY_UPDATE:\nTeam is shipping the beta."

	tr := f.ask(t, AskRequest{Mode: ModeTeam, Content: "plan the week"})

	for _, id := range llm.DefaultRoster {
		if f.agents[id].calls != 1 {
			t.Errorf("expected 1 draft call for %s, got %d", id, f.agents[id].calls)
		}
	}
	if f.agents[llm.AgentCoordinator].calls != 1 {
		t.Fatalf("expected 1 synthesis call, got %d", f.agents[llm.AgentCoordinator].calls)
	}

	// user + 4 drafts + synthesis
	if len(tr.Messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(tr.Messages))
	}

	// Drafts persist in roster order between the user message and the
	// coordinator reply.
	for i, id := range llm.DefaultRoster {
		msg := tr.Messages[1+i]
		if msg.SenderID != models.AgentSender(string(id)) {
			t.Errorf("draft %d: expected sender %s, got %s", i, id, msg.SenderID)
		}
	}

	final := tr.Messages[5]
	if final.Content != "merged answer" {
		t.Errorf("coordinator reply must exclude the summary block, got %q", final.Content)
	}
	if final.SenderName != "Coordinator" {
		t.Errorf("unexpected coordinator sender: %q", final.SenderName)
	}

	if tr.ProjectSummary != "Team is shipping the beta." || tr.MemorySummary != "Team is shipping the beta." {
		t.Errorf("summary not applied: %q / %q", tr.ProjectSummary, tr.MemorySummary)
	}
	if tr.SummaryVersion != 1 || tr.SummaryUpdates != 1 {
		t.Errorf("summary counters not bumped: v=%d updates=%d", tr.SummaryVersion, tr.SummaryUpdates)
	}

	if len(f.store.memories) != 1 {
		t.Fatalf("expected a memory audit note, got %d", len(f.store.memories))
	}
	if !strings.Contains(f.store.memories[0].Content, "Team is shipping the beta.") {
		t.Errorf("audit note missing summary text: %q", f.store.memories[0].Content)
	}
}

func TestAskTeamModeNoMarkerLeavesSummary(t *testing.T) {
	f := newFixture(t)
	f.store.rooms[f.room.ID].ProjectSummary = "original"
	f.store.rooms[f.room.ID].MemorySummary = "original"

	tr := f.ask(t, AskRequest{Mode: ModeTeam, Content: "plan the week"})

	if tr.ProjectSummary != "original" {
		t.Errorf("summary changed without a marker: %q", tr.ProjectSummary)
	}
	if tr.SummaryVersion != 0 {
		t.Errorf("version bumped without a marker: %d", tr.SummaryVersion)
	}
	if len(f.store.memories) != 0 {
		t.Error("no audit note expected without a summary update")
	}
}

func TestAskModelFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.agents[llm.AgentYug].err = errors.New("upstream 500")

	tr := f.ask(t, AskRequest{Mode: ModeSelf, Content: "hello"})

	if tr.Reply.Content != fallbackReply {
		t.Errorf("expected fallback reply, got %q", tr.Reply.Content)
	}
	// The user message survived the failure.
	if len(tr.Messages) != 2 || tr.Messages[0].Content != "hello" {
		t.Errorf("user message not durable across model failure: %+v", tr.Messages)
	}
}

func TestAskTeamPartialFailureFailsBatch(t *testing.T) {
	f := newFixture(t)
	f.agents[llm.AgentNayab].err = errors.New("timeout")

	tr := f.ask(t, AskRequest{Mode: ModeTeam, Content: "plan"})

	if tr.Reply.Content != fallbackReply {
		t.Errorf("a single agent failure must degrade the whole batch, got %q", tr.Reply.Content)
	}
	if f.agents[llm.AgentCoordinator].calls != 0 {
		t.Error("synthesis must not run on a failed batch")
	}
	// No partial drafts leak into the log.
	for _, m := range tr.Messages {
		if m.Content == "yug draft" {
			t.Error("partial draft persisted after batch failure")
		}
	}
}

func TestAskOrgMismatchSelfHeals(t *testing.T) {
	f := newFixture(t)
	f.store.rooms[f.room.ID].OrgID = uuid.New()

	f.ask(t, AskRequest{Mode: ModeSelf, Content: "hello"})

	if f.store.rooms[f.room.ID].OrgID != f.user.OrgID {
		t.Error("room org not reassigned to the caller's org")
	}
}

func TestAskOutreachConfirmation(t *testing.T) {
	f := newFixture(t)
	alice := &models.User{ID: uuid.New(), OrgID: f.user.OrgID, Name: "Alice"}
	f.store.users = append(f.store.users, alice)

	f.store.CreateMessage(context.Background(), &models.Message{
		RoomID:  f.room.ID,
		UserID:  f.user.ID,
		Role:    models.RoleAssistant,
		Content: `Here's a message you could send to Alice: "Ping the design team"`,
	})

	tr := f.ask(t, AskRequest{Mode: ModeSelf, Content: "yes please"})

	if len(f.store.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.store.notifications))
	}
	n := f.store.notifications[0]
	if n.UserID != alice.ID {
		t.Error("notification addressed to the wrong user")
	}
	if n.Message != "Ping the design team" {
		t.Errorf("notification must carry the draft verbatim, got %q", n.Message)
	}

	if !strings.Contains(tr.Reply.Content, `"Ping the design team"`) {
		t.Errorf("confirmation reply missing draft: %q", tr.Reply.Content)
	}

	// The whole point: zero model calls.
	for id, c := range f.agents {
		if c.calls != 0 {
			t.Errorf("outreach shortcut called the model for %s", id)
		}
	}
}

func TestAskOutreachUnresolvedName(t *testing.T) {
	f := newFixture(t)
	f.store.CreateMessage(context.Background(), &models.Message{
		RoomID:  f.room.ID,
		UserID:  f.user.ID,
		Role:    models.RoleAssistant,
		Content: `Here's a message you could send to Bob: "Ship it Friday"`,
	})

	tr := f.ask(t, AskRequest{Mode: ModeSelf, Content: "yes"})

	if len(f.store.notifications) != 0 {
		t.Fatal("no notification may be created for an unresolved name")
	}
	if !strings.Contains(tr.Reply.Content, `"Ship it Friday"`) {
		t.Errorf("unresolved reply must carry the draft verbatim: %q", tr.Reply.Content)
	}
	for id, c := range f.agents {
		if c.calls != 0 {
			t.Errorf("unresolved outreach still must not call the model (%s)", id)
		}
	}
}

func TestAskConfirmationWithoutPriorDraftFallsThrough(t *testing.T) {
	f := newFixture(t)

	tr := f.ask(t, AskRequest{Mode: ModeSelf, Content: "yes"})

	// No prior assistant draft: "yes" is an ordinary message.
	if f.agents[llm.AgentYug].calls != 1 {
		t.Error("expected normal generation when no draft exists")
	}
	if tr.Reply.Content != "yug draft" {
		t.Errorf("unexpected reply: %q", tr.Reply.Content)
	}
	if len(f.store.notifications) != 0 {
		t.Error("no notification expected")
	}
}

func TestAskPublishesEvents(t *testing.T) {
	f := newFixture(t)
	ch, cancel, err := f.broker.Subscribe(context.Background(), f.room.ID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	f.ask(t, AskRequest{Mode: ModeSelf, Content: "hello"})

	var types []string
	for len(ch) > 0 {
		ev := <-ch
		types = append(types, ev.Type)
	}
	if len(types) != 2 {
		t.Fatalf("expected user + reply events, got %v", types)
	}
	for _, typ := range types {
		if typ != events.TypeMessageCreated {
			t.Errorf("unexpected event type %q", typ)
		}
	}
}
