package agent

import (
	"context"
	_ "embed"
	"errors"

	"training-bridge/internal/config"
	"training-bridge/internal/domain"
)

//go:embed prompts/daily_planner.txt
var dailyPlannerPrompt string

// DailyPlanner posts the morning training plan and answers follow-up
// questions in its thread.
type DailyPlanner struct {
	core
	workouts WorkoutSource
	docs     DocStore
}

func NewDailyPlanner(llm LLMClient, poster Poster, store HistoryStore, workouts WorkoutSource, docs DocStore, channel string, settings config.AgentSettings) (*DailyPlanner, error) {
	c, err := newCore(llm, poster, store, domain.AgentDailyPlanner, channel, settings)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		return nil, errors.New("agent: workout source must not be nil")
	}
	if docs == nil {
		return nil, errors.New("agent: doc store must not be nil")
	}
	return &DailyPlanner{core: c, workouts: workouts, docs: docs}, nil
}

// Handle runs the scheduled kickoff when the request carries no thread reply,
// and continues the thread conversation otherwise.
func (p *DailyPlanner) Handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	out, err := p.handle(ctx, req)
	return p.guard(ctx, out, err)
}

func (p *DailyPlanner) handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	prompt := p.systemPrompt(ctx, req.IsThreadReply)
	if req.IsThreadReply {
		return p.converse(ctx, req, prompt)
	}
	return p.kickoff(ctx, prompt, "Post today's training plan.")
}

func (p *DailyPlanner) systemPrompt(ctx context.Context, isThread bool) string {
	goals, goalsErr := p.docs.GetLatest(ctx, goalDocPrefix)
	recent, recentErr := p.workouts.RecentWorkoutsText(ctx,
		contextWindow(p.settings.WorkoutDays, p.settings.WorkoutDaysThread, isThread))
	freq, freqErr := p.workouts.FrequencyText(ctx,
		contextWindow(p.settings.FrequencyDays, p.settings.FrequencyDaysThread, isThread))

	return NewPrompt(dailyPlannerPrompt).
		Add("Today", timestampNote(p.now())).
		Add("Current weekly goals", textOrDefault(goals.Body, goalsErr, "(no goal document on file)")).
		Add("Recent training", textOrDefault(recent, recentErr, "(recent workout data unavailable)")).
		Add("Exercise frequency", textOrDefault(freq, freqErr, "(frequency data unavailable)")).
		String()
}
