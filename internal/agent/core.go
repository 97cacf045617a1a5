// Package agent implements the coaching agents that produce scheduled
// kickoff posts and continue Slack thread conversations. Each agent shares a
// common core: build context, call the model, post the reply, record both
// turns in the conversation store.
package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"training-bridge/internal/config"
	"training-bridge/internal/docstore"
	"training-bridge/internal/domain"
)

// LLMClient produces chat completions.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error)
}

// Poster sends messages to a Slack channel, optionally threaded.
type Poster interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) (string, error)
}

// HistoryStore reads and appends conversation turns.
type HistoryStore interface {
	Append(ctx context.Context, threadID, role, text string, agent domain.Agent, ttlDays int) error
	History(ctx context.Context, threadID string) ([]domain.ChatMessage, error)
}

// DocStore persists long-lived coaching documents.
type DocStore interface {
	Put(ctx context.Context, prefix, title, body string) (string, error)
	GetLatest(ctx context.Context, prefix string) (docstore.Doc, error)
}

// WorkoutSource renders recent training data as prompt-ready text.
type WorkoutSource interface {
	RecentWorkoutsText(ctx context.Context, days int) (string, error)
	FrequencyText(ctx context.Context, days int) (string, error)
}

// WorkoutFetcher renders one workout for analysis.
type WorkoutFetcher interface {
	WorkoutText(ctx context.Context, workoutID string) (string, error)
}

// SideEffect reports a best-effort operation that must not fail the run.
type SideEffect struct {
	Attempted bool
	Err       error
}

// Outcome describes what a run actually did. History writes and error posts
// are best-effort; their failures ride along instead of failing the run.
type Outcome struct {
	ThreadTS       string
	Posted         bool
	Reply          string
	DocKey         string
	LockedDocKey   string
	UserWrite      SideEffect
	AssistantWrite SideEffect
	ErrorPost      SideEffect
}

const errorReplyText = "Something went wrong while I was working on that. Please try again in a bit."

// core carries the dependencies and behavior shared by every thread agent.
type core struct {
	llm      LLMClient
	poster   Poster
	store    HistoryStore
	tag      domain.Agent
	channel  string
	settings config.AgentSettings
	now      func() time.Time
}

// Document prefixes in the artifact bucket.
const (
	goalDocPrefix  = "goal-docs"
	coachDocPrefix = "coach-doc"
)

func newCore(llm LLMClient, poster Poster, store HistoryStore, tag domain.Agent, channel string, settings config.AgentSettings) (core, error) {
	if llm == nil {
		return core{}, errors.New("agent: llm client must not be nil")
	}
	if poster == nil {
		return core{}, errors.New("agent: poster must not be nil")
	}
	if store == nil {
		return core{}, errors.New("agent: history store must not be nil")
	}
	if strings.TrimSpace(channel) == "" {
		return core{}, errors.New("agent: channel must not be empty")
	}
	if strings.TrimSpace(settings.Model) == "" {
		return core{}, errors.New("agent: model must not be empty")
	}
	return core{llm: llm, poster: poster, store: store, tag: tag, channel: channel, settings: settings, now: time.Now}, nil
}

// textOrDefault substitutes a placeholder when a non-critical context read
// fails or comes back empty.
func textOrDefault(s string, err error, def string) string {
	if err != nil || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func (c *core) chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	reply, err := c.llm.Chat(ctx, c.settings.Model, messages, domain.ChatOptions{
		Temperature:         c.settings.Temperature,
		MaxCompletionTokens: c.settings.MaxCompletionTokens,
	})
	if err != nil {
		return "", newError(ErrorUpstream, "openai_error", err)
	}
	return reply, nil
}

// record appends one turn; failures are reported, never propagated.
func (c *core) record(ctx context.Context, threadTS, role, text string) SideEffect {
	err := c.store.Append(ctx, threadTS, role, text, c.tag, c.settings.TTLDays)
	return SideEffect{Attempted: true, Err: err}
}

// kickoff posts a fresh top-level message and seeds the new thread with the
// assistant turn so later replies route back to this agent.
func (c *core) kickoff(ctx context.Context, systemPrompt, openerRequest string) (Outcome, error) {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: openerRequest},
	}
	reply, err := c.chat(ctx, messages)
	if err != nil {
		return Outcome{}, err
	}

	ts, err := c.poster.PostMessage(ctx, c.channel, reply, "")
	if err != nil {
		return Outcome{}, newError(ErrorUpstream, "slack_post_error", err)
	}

	out := Outcome{ThreadTS: ts, Posted: true, Reply: reply}
	out.AssistantWrite = c.record(ctx, ts, domain.RoleAssistant, reply)
	return out, nil
}

// converse handles a thread reply: prior history plus the new user message go
// to the model, the reply is posted in-thread, and both turns are recorded.
// When req.Recorded is set the dispatcher already stored the user turn.
func (c *core) converse(ctx context.Context, req domain.AgentRequest, systemPrompt string) (Outcome, error) {
	userMessage := strings.TrimSpace(req.UserMessage)
	if userMessage == "" {
		return Outcome{}, newError(ErrorInvalidInput, "empty_user_message", nil)
	}
	if strings.TrimSpace(req.ThreadTS) == "" {
		return Outcome{}, newError(ErrorInvalidInput, "missing_thread_ts", nil)
	}

	out := Outcome{ThreadTS: req.ThreadTS}
	if !req.Recorded {
		out.UserWrite = c.record(ctx, req.ThreadTS, domain.RoleUser, userMessage)
	}

	history, err := c.store.History(ctx, req.ThreadTS)
	if err != nil {
		return Outcome{}, newError(ErrorInternal, "dynamodb_history_error", err)
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	if len(history) == 0 || history[len(history)-1].Content != userMessage {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: userMessage})
	}

	reply, err := c.chat(ctx, messages)
	if err != nil {
		return out, err
	}

	if _, err := c.poster.PostMessage(ctx, c.channel, reply, req.ThreadTS); err != nil {
		return out, newError(ErrorUpstream, "slack_post_error", err)
	}
	out.Posted = true
	out.Reply = reply
	out.AssistantWrite = c.record(ctx, req.ThreadTS, domain.RoleAssistant, reply)
	return out, nil
}

// guard is the outer error boundary. It posts a short failure notice to the
// thread (best effort) and returns the original error alongside the partial
// outcome.
func (c *core) guard(ctx context.Context, out Outcome, runErr error) (Outcome, error) {
	if runErr == nil {
		return out, nil
	}
	threadTS := out.ThreadTS
	_, postErr := c.poster.PostMessage(ctx, c.channel, errorReplyText, threadTS)
	out.ErrorPost = SideEffect{Attempted: true, Err: postErr}
	return out, runErr
}

// contextWindow picks the kickoff or thread-continuation window.
func contextWindow(kickoffDays, threadDays int, isThread bool) int {
	if isThread && threadDays > 0 {
		return threadDays
	}
	return kickoffDays
}

// timestampNote renders the run date for prompts that reference "today".
func timestampNote(now time.Time) string {
	return now.UTC().Format("Monday, January 2, 2006")
}
