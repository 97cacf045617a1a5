// Package router resolves which agent owns a Slack thread and forwards
// thread replies to that agent's Lambda.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"training-bridge/internal/domain"
)

// InboundMessage is a normalized Slack message event.
type InboundMessage struct {
	UserID    string
	UserName  string
	ChannelID string
	Text      string
	ThreadTS  string
	EventTS   string
	BotID     string
	Subtype   string
}

// droppedSubtypes are message subtypes the router never forwards.
var droppedSubtypes = map[string]struct{}{
	"bot_message":      {},
	"message_changed":  {},
	"message_deleted":  {},
	"thread_broadcast": {},
}

// OwnerStore answers which agent last wrote in a thread and records turns.
type OwnerStore interface {
	LastOwner(ctx context.Context, threadID string) (domain.Agent, bool, error)
	Append(ctx context.Context, threadID, role, text string, agent domain.Agent, ttlDays int) error
}

// Invoker fires the owning agent's Lambda asynchronously.
type Invoker interface {
	InvokeAsync(ctx context.Context, functionName string, payload any) error
}

// Result reports what the router did with one message.
type Result struct {
	Forwarded bool
	Agent     domain.Agent
	Function  string
	DropCause string
}

// Router dispatches thread replies to the agent that last owned the thread.
type Router struct {
	store        OwnerStore
	invoker      Invoker
	functions    map[domain.Agent]string
	defaultAgent domain.Agent
	ttlDays      map[domain.Agent]int
}

// New creates a Router. functions maps each agent to its Lambda function
// name; ttlDays carries each agent's conversation TTL for the inbound turn
// write.
func New(store OwnerStore, invoker Invoker, functions map[domain.Agent]string, ttlDays map[domain.Agent]int, defaultAgent domain.Agent) (*Router, error) {
	if store == nil {
		return nil, errors.New("router: owner store must not be nil")
	}
	if invoker == nil {
		return nil, errors.New("router: invoker must not be nil")
	}
	if len(functions) == 0 {
		return nil, errors.New("router: function map must not be empty")
	}
	if _, ok := functions[defaultAgent]; !ok {
		return nil, fmt.Errorf("router: default agent %q has no function mapping", defaultAgent)
	}
	return &Router{store: store, invoker: invoker, functions: functions, ttlDays: ttlDays, defaultAgent: defaultAgent}, nil
}

// Route filters the message, resolves the owning agent, records the inbound
// user turn under that agent, and forwards the reply. The user turn is
// written before the async invoke so the agent sees a consistent history.
func (r *Router) Route(ctx context.Context, msg InboundMessage) (Result, error) {
	if cause, drop := dropCause(msg); drop {
		return Result{DropCause: cause}, nil
	}

	owner, ok, err := r.store.LastOwner(ctx, msg.ThreadTS)
	if err != nil {
		return Result{}, fmt.Errorf("router: resolve thread owner: %w", err)
	}
	if !ok || owner == domain.AgentUnknown {
		owner = r.defaultAgent
	}
	function, mapped := r.functions[owner]
	if !mapped {
		owner = r.defaultAgent
		function = r.functions[owner]
	}

	text := strings.TrimSpace(msg.Text)
	if err := r.store.Append(ctx, msg.ThreadTS, domain.RoleUser, text, owner, r.ttlDays[owner]); err != nil {
		return Result{}, fmt.Errorf("router: record inbound turn: %w", err)
	}

	req := domain.AgentRequest{
		UserID:        msg.UserID,
		UserName:      msg.UserName,
		ChannelID:     msg.ChannelID,
		ThreadTS:      msg.ThreadTS,
		UserMessage:   text,
		IsThreadReply: true,
		Recorded:      true,
	}
	if err := r.invoker.InvokeAsync(ctx, function, req); err != nil {
		return Result{}, fmt.Errorf("router: forward to %s: %w", function, err)
	}
	return Result{Forwarded: true, Agent: owner, Function: function}, nil
}

func dropCause(msg InboundMessage) (string, bool) {
	if msg.BotID != "" {
		return "bot_message", true
	}
	if _, drop := droppedSubtypes[msg.Subtype]; drop {
		return "subtype_" + msg.Subtype, true
	}
	if strings.TrimSpace(msg.ThreadTS) == "" || msg.ThreadTS == msg.EventTS {
		return "not_a_thread_reply", true
	}
	if strings.TrimSpace(msg.Text) == "" {
		return "empty_text", true
	}
	return "", false
}
