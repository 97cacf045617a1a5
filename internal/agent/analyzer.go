package agent

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"training-bridge/internal/config"
	"training-bridge/internal/domain"
)

//go:embed prompts/analyzer.txt
var analyzerPrompt string

// Analyzer reviews a single logged workout. The webhook dispatcher invokes
// Analyze after a workout is saved; replies to the posted analysis come back
// through Continue.
type Analyzer struct {
	core
	fetcher WorkoutFetcher
}

func NewAnalyzer(llm LLMClient, poster Poster, store HistoryStore, fetcher WorkoutFetcher, channel string, settings config.AgentSettings) (*Analyzer, error) {
	c, err := newCore(llm, poster, store, domain.AgentAnalyzer, channel, settings)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.New("agent: workout fetcher must not be nil")
	}
	return &Analyzer{core: c, fetcher: fetcher}, nil
}

// Analyze fetches the workout, posts the analysis as a new message, and
// records the assistant turn so thread replies route back here.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalyzeRequest) (Outcome, error) {
	out, err := a.analyze(ctx, req)
	return a.guard(ctx, out, err)
}

func (a *Analyzer) analyze(ctx context.Context, req domain.AnalyzeRequest) (Outcome, error) {
	workoutID := strings.TrimSpace(req.WorkoutID)
	if workoutID == "" {
		return Outcome{}, newError(ErrorInvalidInput, "missing_workout_id", nil)
	}

	workout, err := a.fetcher.WorkoutText(ctx, workoutID)
	if err != nil {
		return Outcome{}, newError(ErrorUpstream, "hevy_error", err)
	}

	prompt := NewPrompt(analyzerPrompt).
		Add("Today", timestampNote(a.now())).
		Add("Logged workout", workout).
		String()

	return a.kickoff(ctx, prompt, "Review this workout.")
}

// Continue handles thread replies under a posted analysis.
func (a *Analyzer) Continue(ctx context.Context, req domain.AgentRequest) (Outcome, error) {
	prompt := NewPrompt(analyzerPrompt).
		Add("Today", timestampNote(a.now())).
		String()
	out, err := a.converse(ctx, req, prompt)
	return a.guard(ctx, out, err)
}
