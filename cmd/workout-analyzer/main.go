package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/slack-go/slack"

	"training-bridge/internal/agent"
	"training-bridge/internal/config"
	"training-bridge/internal/conversation"
	"training-bridge/internal/domain"
	"training-bridge/internal/integrations/hevy"
	"training-bridge/internal/integrations/openai"
	"training-bridge/internal/integrations/paramstore"
	"training-bridge/internal/integrations/slackmsg"
)

// analyzerEvent accepts both shapes this function is invoked with: the
// webhook dispatcher sends a workoutId, the thread router sends an agent
// request.
type analyzerEvent struct {
	domain.AgentRequest
	WorkoutID string `json:"workoutId"`
}

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	openaiTokenParam := config.MustEnv("OPENAI_TOKEN_PARAM")
	hevyKeyParam := config.MustEnv("HEVY_KEY_PARAM")
	botTokenParam := config.MustEnv("SLACK_BOT_TOKEN_PARAM")
	conversationsTable := config.MustEnv("CONVERSATIONS_TABLE")
	channelID := config.MustEnv("CHANNEL_ID")

	agents, err := config.LoadAgents()
	if err != nil {
		slog.Error("failed to load agent settings", "err", err)
		os.Exit(1)
	}
	settings, err := agents.Agent(string(domain.AgentAnalyzer))
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

	// ---- Handler ----
	analyzer, err := agent.NewAnalyzer(llm, poster, store, workouts, channelID, settings)
	if err != nil {
		slog.Error("failed to create analyzer", "err", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, ev analyzerEvent) error {
		var err error
		switch {
		case strings.TrimSpace(ev.WorkoutID) != "":
			_, err = analyzer.Analyze(ctx, domain.AnalyzeRequest{WorkoutID: ev.WorkoutID})
		case ev.IsThreadReply:
			_, err = analyzer.Continue(ctx, ev.AgentRequest)
		default:
			slog.Warn("analyzer invoked without workout id or thread reply")
			return nil
		}
		if err != nil {
			slog.Error("workout analysis failed", "workout_id", ev.WorkoutID, "err", err)
			return err
		}
		return nil
	})
}
