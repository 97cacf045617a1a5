package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"training-bridge/handler"
	"training-bridge/internal/config"
	"training-bridge/internal/dispatch"
	"training-bridge/internal/integrations/paramstore"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	secretParam := config.MustEnv("WEBHOOK_SECRET_PARAM")
	analyzerFunction := config.MustEnv("ANALYZER_FUNCTION")

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
	secret, err := ssmClient.GetParameter(ctx, secretParam)
	if err != nil {
		slog.Error("failed to load webhook secret", "err", err)
		os.Exit(1)
	}
	invoker, err := dispatch.New(awslambda.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create invoker", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewWebhookHandler(secret, invoker, analyzerFunction)
	if err != nil {
		slog.Error("failed to create webhook handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
