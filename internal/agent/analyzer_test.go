package agent

import (
	"context"
	"errors"
	"testing"

	"training-bridge/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T, llm *fakeLLM, poster *fakePoster, store *fakeStore, fetcher *fakeFetcher) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(llm, poster, store, fetcher, "C123", testSettings())
	require.NoError(t, err)
	a.core.now = frozenNow
	return a
}

func TestAnalyzer_Analyze(t *testing.T) {
	llm := &fakeLLM{replies: []string{"Good session; add a back-off set."}}
	poster := &fakePoster{ts: "1700.40"}
	store := &fakeStore{}
	fetcher := &fakeFetcher{text: "Workout: Push Day"}
	a := newTestAnalyzer(t, llm, poster, store, fetcher)

	out, err := a.Analyze(context.Background(), domain.AnalyzeRequest{WorkoutID: "abc-123"})
	require.NoError(t, err)
	require.True(t, out.Posted)
	require.Equal(t, "1700.40", out.ThreadTS)
	require.Equal(t, []string{"abc-123"}, fetcher.ids)

	require.Contains(t, llm.calls[0].messages[0].Content, "Workout: Push Day")
	require.Empty(t, poster.posts[0].threadTS, "analysis starts a new message")

	require.Len(t, store.appends, 1)
	require.Equal(t, domain.AgentAnalyzer, store.appends[0].agent)
}

func TestAnalyzer_MissingWorkoutID(t *testing.T) {
	a := newTestAnalyzer(t, &fakeLLM{}, &fakePoster{}, &fakeStore{}, &fakeFetcher{})
	_, err := a.Analyze(context.Background(), domain.AnalyzeRequest{})
	require.Error(t, err)

	var agentErr *Error
	require.ErrorAs(t, err, &agentErr)
	require.Equal(t, ErrorInvalidInput, agentErr.Code)
}

func TestAnalyzer_FetchFailureIsCritical(t *testing.T) {
	poster := &fakePoster{ts: "1700.40"}
	a := newTestAnalyzer(t, &fakeLLM{}, poster, &fakeStore{}, &fakeFetcher{err: errors.New("hevy 404")})

	out, err := a.Analyze(context.Background(), domain.AnalyzeRequest{WorkoutID: "abc"})
	require.Error(t, err)
	require.True(t, out.ErrorPost.Attempted)
}

func TestAnalyzer_Continue(t *testing.T) {
	llm := &fakeLLM{replies: []string{"Because bar speed dropped."}}
	store := &fakeStore{history: []domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "Good session; add a back-off set."},
	}}
	a := newTestAnalyzer(t, llm, &fakePoster{ts: "1700.41"}, store, &fakeFetcher{})

	out, err := a.Continue(context.Background(), domain.AgentRequest{
		UserMessage:   "why a back-off set?",
		ThreadTS:      "1700.40",
		IsThreadReply: true,
		Recorded:      true,
	})
	require.NoError(t, err)
	require.True(t, out.Posted)
	require.Equal(t, "Good session; add a back-off set.", llm.calls[0].messages[1].Content)
}
