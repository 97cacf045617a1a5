package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/slack-go/slack/slackevents"

	"training-bridge/internal/router"
)

// ThreadRouter dispatches a normalized message to its owning agent.
type ThreadRouter interface {
	Route(ctx context.Context, msg router.InboundMessage) (router.Result, error)
}

// EventsHandler receives Slack Events API callbacks. Slack retries non-200
// responses, so after signature verification every request is acknowledged
// with 200 regardless of downstream outcome.
type EventsHandler struct {
	signingSecret string
	router        ThreadRouter
}

func NewEventsHandler(signingSecret string, threadRouter ThreadRouter) (*EventsHandler, error) {
	if strings.TrimSpace(signingSecret) == "" {
		return nil, errors.New("handler: signing secret must not be empty")
	}
	if threadRouter == nil {
		return nil, errors.New("handler: thread router must not be nil")
	}
	return &EventsHandler{signingSecret: signingSecret, router: threadRouter}, nil
}

func (h *EventsHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)

	body, err := requestBody(req)
	if err != nil {
		return respondError(http.StatusBadRequest, corrID, "INVALID_INPUT", "undecodable_body")
	}
	if err := verifySlackSignature(req.Headers, body, h.signingSecret); err != nil {
		return respondError(http.StatusUnauthorized, corrID, "UNAUTHORIZED", "signature_verification_failed")
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		// Unknown event shapes are acknowledged; Slack must not retry them.
		return respondText(http.StatusOK, corrID, "")
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			return respondError(http.StatusBadRequest, corrID, "INVALID_INPUT", "malformed_challenge")
		}
		return respondText(http.StatusOK, corrID, challenge.Challenge)

	case slackevents.CallbackEvent:
		if msg, ok := event.InnerEvent.Data.(*slackevents.MessageEvent); ok {
			res, err := h.router.Route(ctx, router.InboundMessage{
				UserID:    msg.User,
				ChannelID: msg.Channel,
				Text:      msg.Text,
				ThreadTS:  msg.ThreadTimeStamp,
				EventTS:   msg.TimeStamp,
				BotID:     msg.BotID,
				Subtype:   msg.SubType,
			})
			if err != nil {
				slog.Error("thread routing failed", "thread_ts", msg.ThreadTimeStamp, "err", err)
			} else if res.Forwarded {
				slog.Info("forwarded thread reply", "agent", res.Agent, "function", res.Function)
			}
		}
	}

	return respondText(http.StatusOK, corrID, "")
}
