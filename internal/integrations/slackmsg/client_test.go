package slackmsg

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"
)

type fakeChatAPI struct {
	ts       string
	err      error
	channels []string
	optCount int
}

func (f *fakeChatAPI) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channels = append(f.channels, channelID)
	f.optCount = len(options)
	return channelID, f.ts, f.err
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestPostMessage_NewThread(t *testing.T) {
	api := &fakeChatAPI{ts: "1700000000.000100"}
	c, err := New(api)
	require.NoError(t, err)

	ts, err := c.PostMessage(context.Background(), "C123", "hello", "")
	require.NoError(t, err)
	require.Equal(t, "1700000000.000100", ts)
	require.Equal(t, []string{"C123"}, api.channels)
	require.Equal(t, 1, api.optCount, "no thread option for a top-level message")
}

func TestPostMessage_InThread(t *testing.T) {
	api := &fakeChatAPI{ts: "1700000000.000200"}
	c, err := New(api)
	require.NoError(t, err)

	_, err = c.PostMessage(context.Background(), "C123", "reply", "1700000000.000100")
	require.NoError(t, err)
	require.Equal(t, 2, api.optCount, "thread option must be attached")
}

func TestPostMessage_EmptyChannel(t *testing.T) {
	c, err := New(&fakeChatAPI{})
	require.NoError(t, err)
	_, err = c.PostMessage(context.Background(), " ", "hello", "")
	require.Error(t, err)
}

func TestPostMessage_APIError(t *testing.T) {
	c, err := New(&fakeChatAPI{err: errors.New("channel_not_found")})
	require.NoError(t, err)
	_, err = c.PostMessage(context.Background(), "C123", "hello", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "channel_not_found")
}

func TestPostWebhook_EmptyURL(t *testing.T) {
	require.Error(t, PostWebhook(context.Background(), " ", "ping"))
}
