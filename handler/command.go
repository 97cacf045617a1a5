package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/slack-go/slack"

	"training-bridge/internal/domain"
)

// Poster sends messages to a Slack channel.
type Poster interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) (string, error)
}

const commandUsage = "Tell me what to plan, e.g. `/plan an upper body session for tomorrow`."

// CommandHandler receives the planning slash command. Signature verification
// is required; requests that fail it are rejected outright.
type CommandHandler struct {
	signingSecret   string
	poster          Poster
	invoker         Invoker
	plannerFunction string
}

func NewCommandHandler(signingSecret string, poster Poster, invoker Invoker, plannerFunction string) (*CommandHandler, error) {
	if strings.TrimSpace(signingSecret) == "" {
		return nil, errors.New("handler: signing secret must not be empty")
	}
	if poster == nil {
		return nil, errors.New("handler: poster must not be nil")
	}
	if invoker == nil {
		return nil, errors.New("handler: invoker must not be nil")
	}
	if strings.TrimSpace(plannerFunction) == "" {
		return nil, errors.New("handler: planner function name must not be empty")
	}
	return &CommandHandler{signingSecret: signingSecret, poster: poster, invoker: invoker, plannerFunction: plannerFunction}, nil
}

// Handle verifies the request, echoes the user's text into the channel to
// create the thread root, and forwards the request to the planner. Slack
// expects a response within 3 seconds, so the planner runs asynchronously.
func (h *CommandHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)

	body, err := requestBody(req)
	if err != nil {
		return respondError(http.StatusBadRequest, corrID, "INVALID_INPUT", "undecodable_body")
	}
	if err := verifySlackSignature(req.Headers, body, h.signingSecret); err != nil {
		return respondError(http.StatusUnauthorized, corrID, "UNAUTHORIZED", "signature_verification_failed")
	}

	cmd, err := parseSlashCommand(body)
	if err != nil {
		return respondError(http.StatusBadRequest, corrID, "INVALID_INPUT", "malformed_command")
	}

	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return respondJSON(http.StatusOK, corrID, map[string]string{
			"response_type": "ephemeral",
			"text":          commandUsage,
		})
	}

	// The echo becomes the thread root; the planner replies under it.
	echo := "<@" + cmd.UserID + ">: " + text
	threadTS, err := h.poster.PostMessage(ctx, cmd.ChannelID, echo, "")
	if err != nil {
		slog.Error("failed to echo slash command", "channel", cmd.ChannelID, "err", err)
		return respondError(http.StatusBadGateway, corrID, "UPSTREAM_ERROR", "slack_post_failed")
	}

	agentReq := domain.AgentRequest{
		UserID:      cmd.UserID,
		UserName:    cmd.UserName,
		ChannelID:   cmd.ChannelID,
		ThreadTS:    threadTS,
		UserMessage: text,
	}
	if err := h.invoker.InvokeAsync(ctx, h.plannerFunction, agentReq); err != nil {
		slog.Error("failed to dispatch planner", "thread_ts", threadTS, "err", err)
		return respondError(http.StatusBadGateway, corrID, "UPSTREAM_ERROR", "planner_dispatch_failed")
	}

	// Empty 200 keeps the echoed message as the only visible response.
	return respondText(http.StatusOK, corrID, "")
}

// verifySlackSignature checks the v0 request signature and timestamp.
func verifySlackSignature(headers map[string]string, body []byte, secret string) error {
	sv, err := slack.NewSecretsVerifier(httpHeader(headers), secret)
	if err != nil {
		return err
	}
	if _, err := sv.Write(body); err != nil {
		return err
	}
	return sv.Ensure()
}

// parseSlashCommand reads the form-encoded slash command payload using the
// same parser a direct HTTP server would.
func parseSlashCommand(body []byte) (slack.SlashCommand, error) {
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return slack.SlashCommand{}, err
	}
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return slack.SlashCommandParse(r)
}
