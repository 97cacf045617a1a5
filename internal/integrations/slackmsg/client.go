package slackmsg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// chatAPI is the minimal slack-go interface required by Client.
// *slack.Client satisfies this interface.
type chatAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Poster is the outbound messaging interface the agents and dispatchers
// depend on.
type Poster interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) (string, error)
}

// Client posts messages through the Slack Web API. An empty threadTS starts
// a new top-level message whose returned timestamp becomes the thread root.
type Client struct {
	api chatAPI
}

// New creates a Client over the given Slack chat API.
func New(api chatAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("slackmsg: api must not be nil")
	}
	return &Client{api: api}, nil
}

// PostMessage posts text to a channel, threading under threadTS when set,
// and returns the posted message's timestamp.
func (c *Client) PostMessage(ctx context.Context, channel, text, threadTS string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("slackmsg: channel is required")
	}
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}
	_, ts, err := c.api.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		return "", fmt.Errorf("slackmsg: post message: %w", err)
	}
	return ts, nil
}

// PostWebhook sends text to a Slack incoming webhook. Used by the
// fire-and-forget workflows (heartbeat, weekly review, ski report) that post
// outside any thread.
func PostWebhook(ctx context.Context, webhookURL, text string) error {
	if strings.TrimSpace(webhookURL) == "" {
		return errors.New("slackmsg: webhook url is required")
	}
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, webhookURL, msg); err != nil {
		return fmt.Errorf("slackmsg: post webhook: %w", err)
	}
	return nil
}
