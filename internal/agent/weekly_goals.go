package agent

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"training-bridge/internal/config"
	"training-bridge/internal/domain"
)

//go:embed prompts/weekly_goals.txt
var weeklyGoalsPrompt string

// WeeklyGoals drafts the week's training goals, revises the draft through
// thread conversation, and persists it when the athlete locks it in.
type WeeklyGoals struct {
	core
	workouts WorkoutSource
	docs     DocStore
}

func NewWeeklyGoals(llm LLMClient, poster Poster, store HistoryStore, workouts WorkoutSource, docs DocStore, channel string, settings config.AgentSettings) (*WeeklyGoals, error) {
	c, err := newCore(llm, poster, store, domain.AgentWeeklyGoals, channel, settings)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		return nil, errors.New("agent: workout source must not be nil")
	}
	if docs == nil {
		return nil, errors.New("agent: doc store must not be nil")
	}
	if strings.TrimSpace(settings.TriggerPhrase) == "" {
		return nil, errors.New("agent: trigger phrase must not be empty")
	}
	return &WeeklyGoals{core: c, workouts: workouts, docs: docs}, nil
}

// Handle runs the scheduled draft on kickoff. On thread replies it either
// revises the draft or, when the reply contains the lock-in trigger phrase,
// asks the model for the final document and persists it as the week's goals.
func (g *WeeklyGoals) Handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	out, err := g.handle(ctx, req)
	return g.guard(ctx, out, err)
}

func (g *WeeklyGoals) handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	if req.IsThreadReply && g.isLockIn(req.UserMessage) {
		return g.lockIn(ctx, req)
	}
	prompt := g.systemPrompt(ctx, req.IsThreadReply)
	if req.IsThreadReply {
		return g.converse(ctx, req, prompt)
	}
	return g.kickoff(ctx, prompt, "Draft this week's training goals.")
}

// isLockIn matches the trigger phrase as a case-insensitive substring, so
// "please LOCK IT IN now" triggers while unrelated words do not.
func (g *WeeklyGoals) isLockIn(message string) bool {
	return strings.Contains(strings.ToLower(message), strings.ToLower(g.settings.TriggerPhrase))
}

// lockInstruction closes the conversation: the model folds the thread's
// revisions into the final document, title on the first line.
const lockInstruction = "Produce the final weekly goals document now, incorporating everything agreed in this thread. Start with a title line and output the document only."

// lockIn runs one more model turn with the lock instruction, persists the
// output as the week's goal document, and posts it with a save confirmation
// appended. Repeating the trigger writes a new document version; the newest
// version wins on read.
func (g *WeeklyGoals) lockIn(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	userMessage := strings.TrimSpace(req.UserMessage)
	if strings.TrimSpace(req.ThreadTS) == "" {
		return Outcome{}, newError(ErrorInvalidInput, "missing_thread_ts", nil)
	}

	out := Outcome{ThreadTS: req.ThreadTS}
	if !req.Recorded {
		out.UserWrite = g.record(ctx, req.ThreadTS, domain.RoleUser, userMessage)
	}

	history, err := g.store.History(ctx, req.ThreadTS)
	if err != nil {
		return out, newError(ErrorInternal, "dynamodb_history_error", err)
	}

	messages := make([]domain.ChatMessage, 0, len(history)+3)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: g.systemPrompt(ctx, true)})
	messages = append(messages, history...)
	if len(history) == 0 || history[len(history)-1].Content != userMessage {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: userMessage})
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: lockInstruction})

	doc, err := g.chat(ctx, messages)
	if err != nil {
		return out, err
	}

	title := draftTitle(doc)
	key, err := g.docs.Put(ctx, goalDocPrefix, title, doc)
	if err != nil {
		return out, newError(ErrorUpstream, "s3_put_error", err)
	}
	out.LockedDocKey = key

	reply := fmt.Sprintf("%s\n\nLocked in: %s. Your goals for the week are saved.", strings.TrimSpace(doc), title)
	if _, err := g.poster.PostMessage(ctx, g.channel, reply, req.ThreadTS); err != nil {
		return out, newError(ErrorUpstream, "slack_post_error", err)
	}
	out.Posted = true
	out.Reply = reply
	out.AssistantWrite = g.record(ctx, req.ThreadTS, domain.RoleAssistant, reply)
	return out, nil
}

func (g *WeeklyGoals) systemPrompt(ctx context.Context, isThread bool) string {
	coach, coachErr := g.docs.GetLatest(ctx, coachDocPrefix)
	recent, recentErr := g.workouts.RecentWorkoutsText(ctx,
		contextWindow(g.settings.WorkoutDays, g.settings.WorkoutDaysThread, isThread))
	freq, freqErr := g.workouts.FrequencyText(ctx,
		contextWindow(g.settings.FrequencyDays, g.settings.FrequencyDaysThread, isThread))

	return NewPrompt(weeklyGoalsPrompt).
		Add("Today", timestampNote(g.now())).
		Add("Coaching document", textOrDefault(coach.Body, coachErr, "(no coaching document on file)")).
		Add("Recent training", textOrDefault(recent, recentErr, "(recent workout data unavailable)")).
		Add("Exercise frequency", textOrDefault(freq, freqErr, "(frequency data unavailable)")).
		String()
}

// draftTitle takes the first non-empty line of the draft, stripped of
// markdown heading markers.
func draftTitle(draft string) string {
	for _, line := range strings.Split(draft, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#*"))
		if line != "" {
			return line
		}
	}
	return "Weekly Goals"
}
