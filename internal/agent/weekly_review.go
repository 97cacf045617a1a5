package agent

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"time"

	"training-bridge/internal/config"
	"training-bridge/internal/domain"
)

//go:embed prompts/weekly_review.txt
var weeklyReviewPrompt string

// WebhookPoster posts a standalone message through a Slack incoming webhook.
type WebhookPoster func(ctx context.Context, text string) error

// WeeklyReview posts a one-shot weekly training summary through a webhook.
// It owns no thread and writes no conversation state.
type WeeklyReview struct {
	llm      LLMClient
	workouts WorkoutSource
	post     WebhookPoster
	settings config.AgentSettings
	now      func() time.Time
}

func NewWeeklyReview(llm LLMClient, workouts WorkoutSource, post WebhookPoster, settings config.AgentSettings) (*WeeklyReview, error) {
	if llm == nil {
		return nil, errors.New("agent: llm client must not be nil")
	}
	if workouts == nil {
		return nil, errors.New("agent: workout source must not be nil")
	}
	if post == nil {
		return nil, errors.New("agent: webhook poster must not be nil")
	}
	if strings.TrimSpace(settings.Model) == "" {
		return nil, errors.New("agent: model must not be empty")
	}
	return &WeeklyReview{llm: llm, workouts: workouts, post: post, settings: settings, now: time.Now}, nil
}

// Run fetches the week's training, asks the model for a review, and posts it.
func (r *WeeklyReview) Run(ctx context.Context) (string, error) {
	recent, err := r.workouts.RecentWorkoutsText(ctx, r.settings.WorkoutDays)
	if err != nil {
		return "", newError(ErrorUpstream, "hevy_error", err)
	}

	prompt := NewPrompt(weeklyReviewPrompt).
		Add("Today", timestampNote(r.now())).
		Add("This week's training", recent).
		String()

	review, err := r.llm.Chat(ctx, r.settings.Model, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: prompt},
		{Role: domain.RoleUser, Content: "Write this week's training review."},
	}, domain.ChatOptions{
		Temperature:         r.settings.Temperature,
		MaxCompletionTokens: r.settings.MaxCompletionTokens,
	})
	if err != nil {
		return "", newError(ErrorUpstream, "openai_error", err)
	}

	if err := r.post(ctx, review); err != nil {
		return "", newError(ErrorUpstream, "slack_webhook_error", err)
	}
	return review, nil
}
