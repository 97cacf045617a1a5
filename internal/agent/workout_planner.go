package agent

import (
	"context"
	_ "embed"
	"errors"

	"training-bridge/internal/config"
	"training-bridge/internal/domain"
)

//go:embed prompts/planner.txt
var plannerPrompt string

// WorkoutPlanner is the default thread agent. It answers ad-hoc planning
// requests that start from the slash command or land in unowned threads.
type WorkoutPlanner struct {
	core
	workouts WorkoutSource
}

func NewWorkoutPlanner(llm LLMClient, poster Poster, store HistoryStore, workouts WorkoutSource, channel string, settings config.AgentSettings) (*WorkoutPlanner, error) {
	c, err := newCore(llm, poster, store, domain.AgentWorkoutPlanner, channel, settings)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		return nil, errors.New("agent: workout source must not be nil")
	}
	return &WorkoutPlanner{core: c, workouts: workouts}, nil
}

// Handle replies in the request's thread. The dispatcher always supplies a
// thread timestamp, either the echoed slash-command root or the reply's
// thread.
func (p *WorkoutPlanner) Handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	out, err := p.handle(ctx, req)
	return p.guard(ctx, out, err)
}

func (p *WorkoutPlanner) handle(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	recent, err := p.workouts.RecentWorkoutsText(ctx, p.settings.WorkoutDays)

	prompt := NewPrompt(plannerPrompt).
		Add("Today", timestampNote(p.now())).
		Add("Recent training", textOrDefault(recent, err, "(recent workout data unavailable)")).
		String()

	return p.converse(ctx, req, prompt)
}
