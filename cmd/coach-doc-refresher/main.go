package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/slack-go/slack"

	"training-bridge/internal/agent"
	"training-bridge/internal/config"
	"training-bridge/internal/conversation"
	"training-bridge/internal/docstore"
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
	botTokenParam := config.MustEnv("SLACK_BOT_TOKEN_PARAM")
	conversationsTable := config.MustEnv("CONVERSATIONS_TABLE")
	docsBucket := config.MustEnv("DOCS_BUCKET")
	channelID := config.MustEnv("CHANNEL_ID")

	agents, err := config.LoadAgents()
	if err != nil {
		slog.Error("failed to load agent settings", "err", err)
		os.Exit(1)
	}
	settings, err := agents.Agent(string(domain.AgentCoachDoc))
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
	botToken, err := ssmClient.GetParameter(ctx, botTokenParam)
	if err != nil {
		slog.Error("failed to load bot token", "err", err)
		os.Exit(1)
	}
	poster, err := slackmsg.New(slack.New(botToken))
	if err != nil {
		slog.Error("failed to create slack client", "err", err)
		os.Exit(1)
	}
	store, err := conversation.New(awsdynamodb.NewFromConfig(cfg), conversationsTable)
	if err != nil {
		slog.Error("failed to create conversation store", "err", err)
		os.Exit(1)
	}
	docs, err := docstore.New(awss3.NewFromConfig(cfg), docsBucket)
	if err != nil {
		slog.Error("failed to create doc store", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	refresher, err := agent.NewCoachDocRefresher(llm, poster, store, workouts, docs, channelID, settings)
	if err != nil {
		slog.Error("failed to create coach doc refresher", "err", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, req domain.AgentRequest) error {
		out, err := refresher.Handle(ctx, req)
		if err != nil {
			slog.Error("coach doc refresh failed", "err", err)
			return err
		}
		if out.DocKey != "" {
			slog.Info("coach doc refreshed", "key", out.DocKey)
		}
		return nil
	})
}
