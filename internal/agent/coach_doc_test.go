package agent

import (
	"context"
	"errors"
	"testing"

	"training-bridge/internal/docstore"
	"training-bridge/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestRefresher(t *testing.T, llm *fakeLLM, poster *fakePoster, store *fakeStore, workouts *fakeWorkouts, docs *fakeDocs) *CoachDocRefresher {
	t.Helper()
	r, err := NewCoachDocRefresher(llm, poster, store, workouts, docs, "C123", testSettings())
	require.NoError(t, err)
	r.core.now = frozenNow
	return r
}

func TestCoachDocRefresher_Refresh(t *testing.T) {
	llm := &fakeLLM{replies: []string{
		"Coaching Notes v2\nSquat moving well.",
		"Updated squat assessment.",
	}}
	poster := &fakePoster{ts: "1700.30"}
	store := &fakeStore{}
	docs := &fakeDocs{
		putKey: "coach-doc/20260302T080000Z-coaching-notes-v2.md",
		latest: map[string]docstore.Doc{
			coachDocPrefix: {Body: "Coaching Notes v1"},
			goalDocPrefix:  {Body: "Week goals"},
		},
	}
	r := newTestRefresher(t, llm, poster, store, &fakeWorkouts{recent: "sessions", freq: "freq"}, docs)

	out, err := r.Handle(context.Background(), domain.AgentRequest{})
	require.NoError(t, err)
	require.Equal(t, "coach-doc/20260302T080000Z-coaching-notes-v2.md", out.DocKey)
	require.True(t, out.Posted)

	// First chat revises the document, second summarizes the change.
	require.Len(t, llm.calls, 2)
	require.Contains(t, llm.calls[0].messages[0].Content, "Coaching Notes v1")
	require.Contains(t, llm.calls[0].messages[0].Content, "Week goals")
	require.Contains(t, llm.calls[1].messages[1].Content, "Coaching Notes v2")

	require.Len(t, docs.puts, 1)
	require.Equal(t, coachDocPrefix, docs.puts[0].prefix)
	require.Equal(t, "Coaching Notes v2", docs.puts[0].title)

	require.Len(t, poster.posts, 1)
	require.Equal(t, "Updated squat assessment.", poster.posts[0].text)
	require.Empty(t, poster.posts[0].threadTS)

	require.Len(t, store.appends, 1)
	require.Equal(t, domain.AgentCoachDoc, store.appends[0].agent)
}

func TestCoachDocRefresher_SummaryFailureFallsBack(t *testing.T) {
	llm := &fakeLLM{
		replies: []string{"Doc v2", ""},
		errs:    []error{nil, errors.New("openai flake")},
	}
	poster := &fakePoster{ts: "1700.30"}
	docs := &fakeDocs{putKey: "coach-doc/k.md"}
	r := newTestRefresher(t, llm, poster, &fakeStore{}, &fakeWorkouts{}, docs)

	out, err := r.Handle(context.Background(), domain.AgentRequest{})
	require.NoError(t, err, "the saved document must not be failed by a summary flake")
	require.Equal(t, "coach-doc/k.md", out.DocKey)
	require.Equal(t, "Coaching document refreshed.", poster.posts[0].text)
}

func TestCoachDocRefresher_RevisionFailure(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("openai 500")}}
	docs := &fakeDocs{}
	r := newTestRefresher(t, llm, &fakePoster{ts: "1700.30"}, &fakeStore{}, &fakeWorkouts{}, docs)

	_, err := r.Handle(context.Background(), domain.AgentRequest{})
	require.Error(t, err)
	require.Empty(t, docs.puts)
}

func TestCoachDocRefresher_ThreadReply(t *testing.T) {
	llm := &fakeLLM{replies: []string{"The doc says squat 3x weekly."}}
	docs := &fakeDocs{latest: map[string]docstore.Doc{
		coachDocPrefix: {Body: "Squat 3x weekly."},
	}}
	r := newTestRefresher(t, llm, &fakePoster{ts: "1700.31"}, &fakeStore{}, &fakeWorkouts{}, docs)

	out, err := r.Handle(context.Background(), domain.AgentRequest{
		UserMessage:   "why so much squatting?",
		ThreadTS:      "1700.30",
		IsThreadReply: true,
		Recorded:      true,
	})
	require.NoError(t, err)
	require.True(t, out.Posted)
	require.Contains(t, llm.calls[0].messages[0].Content, "Squat 3x weekly.")
	require.Empty(t, docs.puts, "thread replies never write a new document version")
}
