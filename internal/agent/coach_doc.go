package agent

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"training-bridge/internal/config"
	"training-bridge/internal/domain"
)

//go:embed prompts/coach_doc.txt
var coachDocPrompt string

//go:embed prompts/doc_summary.txt
var docSummaryPrompt string

// CoachDocRefresher periodically revises the long-lived coaching document
// from the latest goals and training data, stores the new version, and posts
// a change summary. Thread replies discuss the current document.
type CoachDocRefresher struct {
	core
	workouts WorkoutSource
	docs     DocStore
}

func NewCoachDocRefresher(llm LLMClient, poster Poster, store HistoryStore, workouts WorkoutSource, docs DocStore, channel string, settings config.AgentSettings) (*CoachDocRefresher, error) {
	c, err := newCore(llm, poster, store, domain.AgentCoachDoc, channel, settings)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		return nil, errors.New("agent: workout source must not be nil")
	}
	if docs == nil {
		return nil, errors.New("agent: doc store must not be nil")
	}
	return &CoachDocRefresher{core: c, workouts: workouts, docs: docs}, nil
}

func (r *CoachDocRefresher) Handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	out, err := r.handle(ctx, req)
	return r.guard(ctx, out, err)
}

func (r *CoachDocRefresher) handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	if req.IsThreadReply {
		coach, coachErr := r.docs.GetLatest(ctx, coachDocPrefix)
		prompt := NewPrompt(coachDocPrompt).
			Add("Today", timestampNote(r.now())).
			Add("Current coaching document", textOrDefault(coach.Body, coachErr, "(no coaching document on file)")).
			String()
		return r.converse(ctx, req, prompt)
	}
	return r.refresh(ctx)
}

// refresh produces the new document version, persists it, and posts a short
// change summary that seeds the announcement thread.
func (r *CoachDocRefresher) refresh(ctx context.Context) (Outcome, error) {
	coach, coachErr := r.docs.GetLatest(ctx, coachDocPrefix)
	goals, goalsErr := r.docs.GetLatest(ctx, goalDocPrefix)
	recent, recentErr := r.workouts.RecentWorkoutsText(ctx, r.settings.WorkoutDays)
	freq, freqErr := r.workouts.FrequencyText(ctx, r.settings.FrequencyDays)

	oldDoc := textOrDefault(coach.Body, coachErr, "(no coaching document yet; write the first version)")
	prompt := NewPrompt(coachDocPrompt).
		Add("Today", timestampNote(r.now())).
		Add("Current coaching document", oldDoc).
		Add("Latest weekly goals", textOrDefault(goals.Body, goalsErr, "(no goal document on file)")).
		Add("Recent training", textOrDefault(recent, recentErr, "(recent workout data unavailable)")).
		Add("Exercise frequency", textOrDefault(freq, freqErr, "(frequency data unavailable)")).
		String()

	revised, err := r.chat(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: prompt},
		{Role: domain.RoleUser, Content: "Produce the revised coaching document."},
	})
	if err != nil {
		return Outcome{}, err
	}

	key, err := r.docs.Put(ctx, coachDocPrefix, draftTitle(revised), revised)
	if err != nil {
		return Outcome{}, newError(ErrorUpstream, "s3_put_error", err)
	}
	out := Outcome{DocKey: key}

	summary, err := r.chat(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: docSummaryPrompt},
		{Role: domain.RoleUser, Content: fmt.Sprintf("Previous document:\n%s\n\nRevised document:\n%s", oldDoc, revised)},
	})
	if err != nil {
		// The document is already saved; fall back to a plain notice.
		summary = "Coaching document refreshed."
	}

	ts, err := r.poster.PostMessage(ctx, r.channel, summary, "")
	if err != nil {
		return out, newError(ErrorUpstream, "slack_post_error", err)
	}
	out.ThreadTS = ts
	out.Posted = true
	out.Reply = summary
	out.AssistantWrite = r.record(ctx, ts, domain.RoleAssistant, summary)
	return out, nil
}
