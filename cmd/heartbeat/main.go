package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"training-bridge/internal/config"
	"training-bridge/internal/integrations/paramstore"
	"training-bridge/internal/integrations/slackmsg"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	webhookURLParam := config.MustEnv("SLACK_WEBHOOK_URL_PARAM")

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
	webhookURL, err := ssmClient.GetParameter(ctx, webhookURLParam)
	if err != nil {
		slog.Error("failed to load webhook url", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	lambda.Start(func(ctx context.Context) error {
		ping := fmt.Sprintf("Heartbeat: all scheduled workflows alive at %s.",
			time.Now().UTC().Format(time.RFC3339))
		if err := slackmsg.PostWebhook(ctx, webhookURL, ping); err != nil {
			slog.Error("heartbeat post failed", "err", err)
			return err
		}
		return nil
	})
}
