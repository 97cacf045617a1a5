package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"training-bridge/internal/domain"

	"github.com/stretchr/testify/require"
)

type appendCall struct {
	threadID string
	role     string
	text     string
	agent    domain.Agent
	ttlDays  int
}

type fakeStore struct {
	owner     domain.Agent
	ownerOK   bool
	ownerErr  error
	appends   []appendCall
	appendErr error
}

func (f *fakeStore) LastOwner(_ context.Context, _ string) (domain.Agent, bool, error) {
	return f.owner, f.ownerOK, f.ownerErr
}

func (f *fakeStore) Append(_ context.Context, threadID, role, text string, agent domain.Agent, ttlDays int) error {
	f.appends = append(f.appends, appendCall{threadID: threadID, role: role, text: text, agent: agent, ttlDays: ttlDays})
	return f.appendErr
}

type invocation struct {
	function string
	payload  []byte
}

type fakeInvoker struct {
	invocations []invocation
	err         error
}

func (f *fakeInvoker) InvokeAsync(_ context.Context, functionName string, payload any) error {
	b, _ := json.Marshal(payload)
	f.invocations = append(f.invocations, invocation{function: functionName, payload: b})
	return f.err
}

func testFunctions() map[domain.Agent]string {
	return map[domain.Agent]string{
		domain.AgentWorkoutPlanner: "workout-planner",
		domain.AgentWeeklyGoals:    "weekly-goals",
		domain.AgentDailyPlanner:   "daily-planner",
	}
}

func testTTLs() map[domain.Agent]int {
	return map[domain.Agent]int{
		domain.AgentWorkoutPlanner: 7,
		domain.AgentWeeklyGoals:    14,
		domain.AgentDailyPlanner:   7,
	}
}

func newTestRouter(t *testing.T, store *fakeStore, invoker *fakeInvoker) *Router {
	t.Helper()
	r, err := New(store, invoker, testFunctions(), testTTLs(), domain.AgentWorkoutPlanner)
	require.NoError(t, err)
	return r
}

func threadReply() InboundMessage {
	return InboundMessage{
		UserID:    "U1",
		ChannelID: "C1",
		Text:      "tweak the plan",
		ThreadTS:  "1700.1",
		EventTS:   "1700.5",
	}
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, &fakeInvoker{}, testFunctions(), testTTLs(), domain.AgentWorkoutPlanner)
	require.Error(t, err)
	_, err = New(&fakeStore{}, nil, testFunctions(), testTTLs(), domain.AgentWorkoutPlanner)
	require.Error(t, err)
	_, err = New(&fakeStore{}, &fakeInvoker{}, testFunctions(), testTTLs(), domain.AgentCoachDoc)
	require.Error(t, err, "default agent must have a function mapping")
}

func TestRoute_OwnedThreadGoesToOwner(t *testing.T) {
	store := &fakeStore{owner: domain.AgentWeeklyGoals, ownerOK: true}
	invoker := &fakeInvoker{}
	r := newTestRouter(t, store, invoker)

	res, err := r.Route(context.Background(), threadReply())
	require.NoError(t, err)
	require.True(t, res.Forwarded)
	require.Equal(t, domain.AgentWeeklyGoals, res.Agent)
	require.Len(t, invoker.invocations, 1)
	require.Equal(t, "weekly-goals", invoker.invocations[0].function)

	var req domain.AgentRequest
	require.NoError(t, json.Unmarshal(invoker.invocations[0].payload, &req))
	require.True(t, req.IsThreadReply)
	require.True(t, req.Recorded)
	require.Equal(t, "tweak the plan", req.UserMessage)
	require.Equal(t, "1700.1", req.ThreadTS)
}

func TestRoute_UnownedThreadGoesToDefault(t *testing.T) {
	invoker := &fakeInvoker{}
	r := newTestRouter(t, &fakeStore{ownerOK: false}, invoker)

	res, err := r.Route(context.Background(), threadReply())
	require.NoError(t, err)
	require.Equal(t, domain.AgentWorkoutPlanner, res.Agent)
	require.Equal(t, "workout-planner", invoker.invocations[0].function)
}

func TestRoute_UnknownOwnerTagGoesToDefault(t *testing.T) {
	invoker := &fakeInvoker{}
	r := newTestRouter(t, &fakeStore{owner: domain.AgentUnknown, ownerOK: true}, invoker)

	res, err := r.Route(context.Background(), threadReply())
	require.NoError(t, err)
	require.Equal(t, domain.AgentWorkoutPlanner, res.Agent)
}

func TestRoute_UnmappedOwnerFallsBack(t *testing.T) {
	invoker := &fakeInvoker{}
	r := newTestRouter(t, &fakeStore{owner: domain.AgentAnalyzer, ownerOK: true}, invoker)

	res, err := r.Route(context.Background(), threadReply())
	require.NoError(t, err)
	require.Equal(t, domain.AgentWorkoutPlanner, res.Agent)
}

func TestRoute_RecordsInboundTurnBeforeForwarding(t *testing.T) {
	store := &fakeStore{owner: domain.AgentWeeklyGoals, ownerOK: true}
	invoker := &fakeInvoker{}
	r := newTestRouter(t, store, invoker)

	_, err := r.Route(context.Background(), threadReply())
	require.NoError(t, err)

	require.Len(t, store.appends, 1)
	rec := store.appends[0]
	require.Equal(t, "1700.1", rec.threadID)
	require.Equal(t, domain.RoleUser, rec.role)
	require.Equal(t, "tweak the plan", rec.text)
	// The inbound turn is tagged with the resolved owner and its TTL.
	require.Equal(t, domain.AgentWeeklyGoals, rec.agent)
	require.Equal(t, 14, rec.ttlDays)
}

func TestRoute_AppendFailureBlocksForward(t *testing.T) {
	store := &fakeStore{ownerOK: false, appendErr: errors.New("dynamo down")}
	invoker := &fakeInvoker{}
	r := newTestRouter(t, store, invoker)

	_, err := r.Route(context.Background(), threadReply())
	require.Error(t, err)
	require.Empty(t, invoker.invocations)
}

func TestRoute_Drops(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*InboundMessage)
		cause string
	}{
		{"bot message", func(m *InboundMessage) { m.BotID = "B1" }, "bot_message"},
		{"edited message", func(m *InboundMessage) { m.Subtype = "message_changed" }, "subtype_message_changed"},
		{"deleted message", func(m *InboundMessage) { m.Subtype = "message_deleted" }, "subtype_message_deleted"},
		{"not in a thread", func(m *InboundMessage) { m.ThreadTS = "" }, "not_a_thread_reply"},
		{"thread root", func(m *InboundMessage) { m.ThreadTS = m.EventTS }, "not_a_thread_reply"},
		{"empty text", func(m *InboundMessage) { m.Text = "  " }, "empty_text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{ownerOK: true, owner: domain.AgentWeeklyGoals}
			invoker := &fakeInvoker{}
			r := newTestRouter(t, store, invoker)

			msg := threadReply()
			tc.mut(&msg)
			res, err := r.Route(context.Background(), msg)
			require.NoError(t, err)
			require.False(t, res.Forwarded)
			require.Equal(t, tc.cause, res.DropCause)
			require.Empty(t, invoker.invocations)
			require.Empty(t, store.appends)
		})
	}
}

func TestRoute_OwnerLookupError(t *testing.T) {
	r := newTestRouter(t, &fakeStore{ownerErr: errors.New("throttled")}, &fakeInvoker{})
	_, err := r.Route(context.Background(), threadReply())
	require.Error(t, err)
}
