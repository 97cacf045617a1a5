package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"training-bridge/internal/config"
	"training-bridge/internal/integrations/openai"
	"training-bridge/internal/integrations/paramstore"
	"training-bridge/internal/integrations/slackmsg"
	"training-bridge/internal/integrations/weather"
	"training-bridge/internal/ski"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	openaiTokenParam := config.MustEnv("OPENAI_TOKEN_PARAM")
	webhookURLParam := config.MustEnv("SLACK_WEBHOOK_URL_PARAM")
	userAgent := config.Env("NWS_USER_AGENT", "training-bridge (ski-report)")

	agents, err := config.LoadAgents()
	if err != nil {
		slog.Error("failed to load agent settings", "err", err)
		os.Exit(1)
	}
	settings, err := agents.Agent("ski_report")
	if err != nil {
		slog.Error("failed to resolve report settings", "err", err)
		os.Exit(1)
	}
	resorts := make([]ski.Resort, 0, len(settings.Resorts))
	for _, r := range settings.Resorts {
		resorts = append(resorts, ski.Resort{Name: r.Name, Lat: r.Lat, Lon: r.Lon})
	}

	// ---- AWS SDK config ----
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	llm, err := openai.NewClient(ssmClient, openaiTokenParam)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}
	forecasts, err := weather.NewClient(userAgent)
	if err != nil {
		slog.Error("failed to create weather client", "err", err)
		os.Exit(1)
	}
	webhookURL, err := ssmClient.GetParameter(ctx, webhookURLParam)
	if err != nil {
		slog.Error("failed to load webhook url", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	reporter, err := ski.New(llm, forecasts, func(ctx context.Context, text string) error {
		return slackmsg.PostWebhook(ctx, webhookURL, text)
	}, resorts, settings)
	if err != nil {
		slog.Error("failed to create ski reporter", "err", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context) error {
		if _, err := reporter.Run(ctx); err != nil {
			slog.Error("ski report failed", "err", err)
			return err
		}
		return nil
	})
}
