package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"training-bridge/handler"
	"training-bridge/internal/config"
	"training-bridge/internal/conversation"
	"training-bridge/internal/dispatch"
	"training-bridge/internal/domain"
	"training-bridge/internal/integrations/paramstore"
	"training-bridge/internal/router"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	signingSecretParam := config.MustEnv("SLACK_SIGNING_SECRET_PARAM")
	conversationsTable := config.MustEnv("CONVERSATIONS_TABLE")
	functions := map[domain.Agent]string{
		domain.AgentWorkoutPlanner: config.MustEnv("PLANNER_FUNCTION"),
		domain.AgentDailyPlanner:   config.MustEnv("DAILY_PLANNER_FUNCTION"),
		domain.AgentWeeklyGoals:    config.MustEnv("WEEKLY_GOALS_FUNCTION"),
		domain.AgentCoachDoc:       config.MustEnv("COACH_DOC_FUNCTION"),
		domain.AgentAnalyzer:       config.MustEnv("ANALYZER_FUNCTION"),
	}

	agents, err := config.LoadAgents()
	if err != nil {
		slog.Error("failed to load agent settings", "err", err)
		os.Exit(1)
	}
	ttlDays := make(map[domain.Agent]int, len(functions))
	for tag := range functions {
		if s, err := agents.Agent(string(tag)); err == nil {
			ttlDays[tag] = s.TTLDays
		}
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
	signingSecret, err := ssmClient.GetParameter(ctx, signingSecretParam)
	if err != nil {
		slog.Error("failed to load signing secret", "err", err)
		os.Exit(1)
	}
	store, err := conversation.New(awsdynamodb.NewFromConfig(cfg), conversationsTable)
	if err != nil {
		slog.Error("failed to create conversation store", "err", err)
		os.Exit(1)
	}
	invoker, err := dispatch.New(awslambda.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create invoker", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	threadRouter, err := router.New(store, invoker, functions, ttlDays, domain.AgentWorkoutPlanner)
	if err != nil {
		slog.Error("failed to create thread router", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewEventsHandler(signingSecret, threadRouter)
	if err != nil {
		slog.Error("failed to create events handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
