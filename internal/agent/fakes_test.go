package agent

import (
	"context"
	"time"

	"training-bridge/internal/config"
	"training-bridge/internal/docstore"
	"training-bridge/internal/domain"
)

type chatCall struct {
	model    string
	messages []domain.ChatMessage
	opts     domain.ChatOptions
}

type fakeLLM struct {
	replies []string
	errs    []error
	calls   []chatCall
}

func (f *fakeLLM) Chat(_ context.Context, model string, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	f.calls = append(f.calls, chatCall{model: model, messages: messages, opts: opts})
	i := len(f.calls) - 1
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return reply, err
}

type post struct {
	channel  string
	text     string
	threadTS string
}

type fakePoster struct {
	ts    string
	err   error
	posts []post
}

func (f *fakePoster) PostMessage(_ context.Context, channel, text, threadTS string) (string, error) {
	f.posts = append(f.posts, post{channel: channel, text: text, threadTS: threadTS})
	if f.err != nil {
		return "", f.err
	}
	return f.ts, nil
}

type appendCall struct {
	threadID string
	role     string
	text     string
	agent    domain.Agent
	ttlDays  int
}

type fakeStore struct {
	appends    []appendCall
	appendErr  error
	history    []domain.ChatMessage
	historyErr error
}

func (f *fakeStore) Append(_ context.Context, threadID, role, text string, agent domain.Agent, ttlDays int) error {
	f.appends = append(f.appends, appendCall{threadID: threadID, role: role, text: text, agent: agent, ttlDays: ttlDays})
	return f.appendErr
}

func (f *fakeStore) History(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return f.history, f.historyErr
}

type putCall struct {
	prefix string
	title  string
	body   string
}

type fakeDocs struct {
	latest    map[string]docstore.Doc
	latestErr error
	putKey    string
	putErr    error
	puts      []putCall
}

func (f *fakeDocs) Put(_ context.Context, prefix, title, body string) (string, error) {
	f.puts = append(f.puts, putCall{prefix: prefix, title: title, body: body})
	return f.putKey, f.putErr
}

func (f *fakeDocs) GetLatest(_ context.Context, prefix string) (docstore.Doc, error) {
	if f.latestErr != nil {
		return docstore.Doc{}, f.latestErr
	}
	doc, ok := f.latest[prefix]
	if !ok {
		return docstore.Doc{}, docstore.ErrNotFound
	}
	return doc, nil
}

type fakeWorkouts struct {
	recentDays []int
	freqDays   []int
	recent     string
	recentErr  error
	freq       string
	freqErr    error
}

func (f *fakeWorkouts) RecentWorkoutsText(_ context.Context, days int) (string, error) {
	f.recentDays = append(f.recentDays, days)
	return f.recent, f.recentErr
}

func (f *fakeWorkouts) FrequencyText(_ context.Context, days int) (string, error) {
	f.freqDays = append(f.freqDays, days)
	return f.freq, f.freqErr
}

type fakeFetcher struct {
	text string
	err  error
	ids  []string
}

func (f *fakeFetcher) WorkoutText(_ context.Context, workoutID string) (string, error) {
	f.ids = append(f.ids, workoutID)
	return f.text, f.err
}

func testSettings() config.AgentSettings {
	return config.AgentSettings{
		Model:               "gpt-test",
		Temperature:         0.7,
		MaxCompletionTokens: 800,
		TTLDays:             7,
		WorkoutDays:         7,
		WorkoutDaysThread:   21,
		FrequencyDays:       30,
		FrequencyDaysThread: 60,
		TriggerPhrase:       "lock it in",
	}
}

func frozenNow() time.Time {
	return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
}
