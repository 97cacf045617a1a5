package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"training-bridge/internal/agent"
	"training-bridge/internal/config"
	"training-bridge/internal/domain"
	"training-bridge/internal/integrations/hevy"
	"training-bridge/internal/integrations/openai"
	"training-bridge/internal/integrations/paramstore"
	"training-bridge/internal/integrations/slackmsg"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	openaiTokenParam := config.MustEnv("OPENAI_TOKEN_PARAM")
	hevyKeyParam := config.MustEnv("HEVY_KEY_PARAM")
	webhookURLParam := config.MustEnv("SLACK_WEBHOOK_URL_PARAM")

	agents, err := config.LoadAgents()
	if err != nil {
		slog.Error("failed to load agent settings", "err", err)
		os.Exit(1)
	}
	settings, err := agents.Agent(string(domain.AgentWeeklyReview))
	if err != nil {
		slog.Error("failed to resolve agent settings", "err", err)
		os.Exit(1)
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
	workouts, err := hevy.NewClient(ssmClient, hevyKeyParam)
	if err != nil {
		slog.Error("failed to create Hevy client", "err", err)
		os.Exit(1)
	}
	webhookURL, err := ssmClient.GetParameter(ctx, webhookURLParam)
	if err != nil {
		slog.Error("failed to load webhook url", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	review, err := agent.NewWeeklyReview(llm, workouts, func(ctx context.Context, text string) error {
		return slackmsg.PostWebhook(ctx, webhookURL, text)
	}, settings)
	if err != nil {
		slog.Error("failed to create weekly review", "err", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context) error {
		if _, err := review.Run(ctx); err != nil {
			slog.Error("weekly review failed", "err", err)
			return err
		}
		return nil
	})
}
