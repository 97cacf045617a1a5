package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"training-bridge/internal/domain"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

var errSlackDown = errors.New("slack down")

type postCall struct {
	channel  string
	text     string
	threadTS string
}

type fakePoster struct {
	ts    string
	err   error
	posts []postCall
}

func (f *fakePoster) PostMessage(_ context.Context, channel, text, threadTS string) (string, error) {
	f.posts = append(f.posts, postCall{channel: channel, text: text, threadTS: threadTS})
	if f.err != nil {
		return "", f.err
	}
	return f.ts, nil
}

// signedEvent builds an API Gateway event carrying a valid v0 Slack
// signature for the given body.
func signedEvent(t *testing.T, body string, at time.Time) events.APIGatewayProxyRequest {
	t.Helper()
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	sig := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Headers: map[string]string{
			"X-Slack-Request-Timestamp": ts,
			"X-Slack-Signature":         sig,
			"Content-Type":              "application/x-www-form-urlencoded",
		},
		Body: body,
	}
}

func commandBody(text string) string {
	form := url.Values{}
	form.Set("command", "/plan")
	form.Set("text", text)
	form.Set("user_id", "U123")
	form.Set("user_name", "drew")
	form.Set("channel_id", "C456")
	return form.Encode()
}

func newTestCommandHandler(t *testing.T, poster *fakePoster, invoker *fakeInvoker) *CommandHandler {
	t.Helper()
	h, err := NewCommandHandler(testSigningSecret, poster, invoker, "workout-planner")
	require.NoError(t, err)
	return h
}

func TestNewCommandHandler_Validates(t *testing.T) {
	_, err := NewCommandHandler(" ", &fakePoster{}, &fakeInvoker{}, "fn")
	require.Error(t, err)
	_, err = NewCommandHandler("s", nil, &fakeInvoker{}, "fn")
	require.Error(t, err)
	_, err = NewCommandHandler("s", &fakePoster{}, nil, "fn")
	require.Error(t, err)
}

func TestCommand_EchoesAndDispatchesPlanner(t *testing.T) {
	poster := &fakePoster{ts: "1700.55"}
	invoker := &fakeInvoker{}
	h := newTestCommandHandler(t, poster, invoker)

	resp, err := h.Handle(context.Background(), signedEvent(t, commandBody("legs tomorrow"), time.Now()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, resp.Body)

	// Echo creates the thread root.
	require.Len(t, poster.posts, 1)
	require.Equal(t, "C456", poster.posts[0].channel)
	require.Equal(t, "<@U123>: legs tomorrow", poster.posts[0].text)
	require.Empty(t, poster.posts[0].threadTS)

	require.Len(t, invoker.invocations, 1)
	require.Equal(t, "workout-planner", invoker.invocations[0].function)
	req := invoker.invocations[0].payload.(domain.AgentRequest)
	require.Equal(t, "legs tomorrow", req.UserMessage)
	require.Equal(t, "1700.55", req.ThreadTS)
	require.Equal(t, "U123", req.UserID)
	require.False(t, req.IsThreadReply)
	require.False(t, req.Recorded)
}

func TestCommand_EmptyTextReturnsUsage(t *testing.T) {
	poster := &fakePoster{ts: "1700.55"}
	invoker := &fakeInvoker{}
	h := newTestCommandHandler(t, poster, invoker)

	resp, err := h.Handle(context.Background(), signedEvent(t, commandBody("  "), time.Now()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := parseBody[map[string]string](t, resp.Body)
	require.Equal(t, "ephemeral", out["response_type"])
	require.NotEmpty(t, out["text"])
	require.Empty(t, poster.posts)
	require.Empty(t, invoker.invocations)
}

func TestCommand_BadSignatureRejected(t *testing.T) {
	invoker := &fakeInvoker{}
	h := newTestCommandHandler(t, &fakePoster{}, invoker)

	event := signedEvent(t, commandBody("legs"), time.Now())
	event.Headers["X-Slack-Signature"] = "v0=deadbeef"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, invoker.invocations)
}

func TestCommand_StaleTimestampRejected(t *testing.T) {
	h := newTestCommandHandler(t, &fakePoster{}, &fakeInvoker{})

	resp, err := h.Handle(context.Background(), signedEvent(t, commandBody("legs"), time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCommand_Base64Body(t *testing.T) {
	poster := &fakePoster{ts: "1700.55"}
	invoker := &fakeInvoker{}
	h := newTestCommandHandler(t, poster, invoker)

	event := signedEvent(t, commandBody("push day"), time.Now())
	event.Body = base64.StdEncoding.EncodeToString([]byte(event.Body))
	event.IsBase64Encoded = true

	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, invoker.invocations, 1)
}

func TestCommand_EchoFailure(t *testing.T) {
	poster := &fakePoster{err: errSlackDown}
	invoker := &fakeInvoker{}
	h := newTestCommandHandler(t, poster, invoker)

	resp, err := h.Handle(context.Background(), signedEvent(t, commandBody("legs"), time.Now()))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Empty(t, invoker.invocations)
}
