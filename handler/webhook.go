package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"training-bridge/internal/domain"
)

// Invoker forwards work to another Lambda without waiting.
type Invoker interface {
	InvokeAsync(ctx context.Context, functionName string, payload any) error
}

// hevyEvent is the webhook payload Hevy sends after a workout is saved.
// The workout id historically appeared both nested and at the top level.
type hevyEvent struct {
	ID      string `json:"id"`
	Payload struct {
		WorkoutID string `json:"workoutId"`
	} `json:"payload"`
	WorkoutID string `json:"workoutId"`
}

type webhookAck struct {
	Received  bool   `json:"received"`
	WorkoutID string `json:"workoutId,omitempty"`
	Note      string `json:"note,omitempty"`
}

// WebhookHandler receives Hevy workout webhooks, guarded by a shared secret
// in the authorization header.
type WebhookHandler struct {
	secret           string
	invoker          Invoker
	analyzerFunction string
}

func NewWebhookHandler(secret string, invoker Invoker, analyzerFunction string) (*WebhookHandler, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("handler: webhook secret must not be empty")
	}
	if invoker == nil {
		return nil, errors.New("handler: invoker must not be nil")
	}
	if strings.TrimSpace(analyzerFunction) == "" {
		return nil, errors.New("handler: analyzer function name must not be empty")
	}
	return &WebhookHandler{secret: secret, invoker: invoker, analyzerFunction: analyzerFunction}, nil
}

// Handle authenticates the caller, extracts the workout id, and hands it to
// the analyzer asynchronously. Unparseable bodies are acknowledged so Hevy
// does not retry them forever.
func (h *WebhookHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)

	if headerValue(req.Headers, "authorization") != h.secret {
		return respondError(http.StatusUnauthorized, corrID, "UNAUTHORIZED", "invalid_webhook_secret")
	}

	body, err := requestBody(req)
	if err != nil {
		return respondJSON(http.StatusOK, corrID, webhookAck{Received: true, Note: "undecodable body ignored"})
	}
	var event hevyEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return respondJSON(http.StatusOK, corrID, webhookAck{Received: true, Note: "unparseable body ignored"})
	}

	workoutID := strings.TrimSpace(event.Payload.WorkoutID)
	if workoutID == "" {
		workoutID = strings.TrimSpace(event.WorkoutID)
	}
	if workoutID == "" {
		return respondError(http.StatusBadRequest, corrID, "INVALID_INPUT", "missing_workout_id")
	}

	if err := h.invoker.InvokeAsync(ctx, h.analyzerFunction, domain.AnalyzeRequest{WorkoutID: workoutID}); err != nil {
		slog.Error("failed to dispatch workout analysis", "workout_id", workoutID, "err", err)
		return respondError(http.StatusBadGateway, corrID, "UPSTREAM_ERROR", "analyzer_dispatch_failed")
	}

	return respondJSON(http.StatusOK, corrID, webhookAck{Received: true, WorkoutID: workoutID})
}
