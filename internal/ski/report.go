// Package ski builds the scheduled ski-conditions report: forecasts for a
// set of resorts, summarized by the model and posted through a webhook.
package ski

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"training-bridge/internal/config"
	"training-bridge/internal/domain"
	"training-bridge/internal/integrations/weather"
)

//go:embed prompt.txt
var reportPrompt string

// Resort is one forecast point to report on.
type Resort struct {
	Name string
	Lat  float64
	Lon  float64
}

// ForecastSource fetches a point forecast.
type ForecastSource interface {
	PointForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error)
}

// LLMClient produces chat completions.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error)
}

// WebhookPoster posts the finished report.
type WebhookPoster func(ctx context.Context, text string) error

// Reporter assembles and posts the conditions report.
type Reporter struct {
	llm       LLMClient
	forecasts ForecastSource
	post      WebhookPoster
	resorts   []Resort
	settings  config.AgentSettings
	now       func() time.Time
}

func New(llm LLMClient, forecasts ForecastSource, post WebhookPoster, resorts []Resort, settings config.AgentSettings) (*Reporter, error) {
	if llm == nil {
		return nil, errors.New("ski: llm client must not be nil")
	}
	if forecasts == nil {
		return nil, errors.New("ski: forecast source must not be nil")
	}
	if post == nil {
		return nil, errors.New("ski: webhook poster must not be nil")
	}
	if len(resorts) == 0 {
		return nil, errors.New("ski: at least one resort is required")
	}
	if strings.TrimSpace(settings.Model) == "" {
		return nil, errors.New("ski: model must not be empty")
	}
	return &Reporter{llm: llm, forecasts: forecasts, post: post, resorts: resorts, settings: settings, now: time.Now}, nil
}

// Run fetches every resort's forecast, summarizes conditions, and posts the
// report. Individual forecast failures degrade to a per-resort note; the run
// fails only when no forecast could be fetched at all.
func (r *Reporter) Run(ctx context.Context) (string, error) {
	bundle, fetched := r.forecastBundle(ctx)
	if fetched == 0 {
		return "", errors.New("ski: no forecasts available for any resort")
	}

	report, err := r.llm.Chat(ctx, r.settings.Model, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: reportPrompt},
		{Role: domain.RoleUser, Content: bundle},
	}, domain.ChatOptions{
		Temperature:         r.settings.Temperature,
		MaxCompletionTokens: r.settings.MaxCompletionTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ski: summarize forecasts: %w", err)
	}

	if err := r.post(ctx, report); err != nil {
		return "", fmt.Errorf("ski: post report: %w", err)
	}
	return report, nil
}

func (r *Reporter) forecastBundle(ctx context.Context) (string, int) {
	var b strings.Builder
	fmt.Fprintf(&b, "Report date: %s\n", r.now().UTC().Format("Monday, January 2, 2006"))

	fetched := 0
	for _, resort := range r.resorts {
		fmt.Fprintf(&b, "\n## %s\n", resort.Name)
		fc, err := r.forecasts.PointForecast(ctx, resort.Lat, resort.Lon)
		if err != nil {
			b.WriteString("(forecast unavailable)\n")
			continue
		}
		fetched++
		for _, p := range capPeriods(fc.Periods, 6) {
			fmt.Fprintf(&b, "- %s: %d%s, wind %s %s. %s\n",
				p.Name, p.Temperature, p.TemperatureUnit, p.WindDirection, p.WindSpeed, p.DetailedForecast)
		}
	}
	return b.String(), fetched
}

func capPeriods(periods []weather.Period, n int) []weather.Period {
	if len(periods) <= n {
		return periods
	}
	return periods[:n]
}
