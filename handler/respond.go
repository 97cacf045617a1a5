// Package handler contains the synchronous entry points: the Hevy webhook,
// the Slack slash command, and the Slack Events API receiver. Each validates
// the caller, hands work to an agent Lambda asynchronously, and answers fast.
package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func respondJSON(status int, corrID string, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    responseHeaders("application/json", corrID),
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders("application/json", corrID),
		Body:       string(body),
	}, nil
}

func respondError(status int, corrID, code, reason string) (events.APIGatewayProxyResponse, error) {
	return respondJSON(status, corrID, errorResponse{Error: code, Reason: reason})
}

func respondText(status int, corrID, body string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders("text/plain", corrID),
		Body:       body,
	}, nil
}

func responseHeaders(contentType, corrID string) map[string]string {
	return map[string]string{
		"Content-Type":     contentType,
		"X-Correlation-Id": corrID,
	}
}

// correlationID reuses the caller's id when present, matching header names
// case-insensitively as API Gateway does not canonicalize them.
func correlationID(headers map[string]string) string {
	if v := headerValue(headers, "x-correlation-id"); v != "" {
		return v
	}
	return uuid.NewString()
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// requestBody returns the raw request body, decoding the base64 transport
// encoding API Gateway applies to binary payloads.
func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	body, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, fmt.Errorf("handler: decode base64 body: %w", err)
	}
	return body, nil
}

// httpHeader converts API Gateway's flat header map for libraries that
// expect an http.Header.
func httpHeader(headers map[string]string) http.Header {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}
	return h
}
