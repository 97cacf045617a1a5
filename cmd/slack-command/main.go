package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/slack-go/slack"

	"training-bridge/handler"
	"training-bridge/internal/config"
	"training-bridge/internal/dispatch"
	"training-bridge/internal/integrations/paramstore"
	"training-bridge/internal/integrations/slackmsg"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	signingSecretParam := config.MustEnv("SLACK_SIGNING_SECRET_PARAM")
	botTokenParam := config.MustEnv("SLACK_BOT_TOKEN_PARAM")
	plannerFunction := config.MustEnv("PLANNER_FUNCTION")

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
	invoker, err := dispatch.New(awslambda.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create invoker", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewCommandHandler(signingSecret, poster, invoker, plannerFunction)
	if err != nil {
		slog.Error("failed to create command handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
