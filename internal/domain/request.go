package domain

// AgentRequest is the JSON payload passed between Lambdas when a dispatcher
// or the thread router invokes an agent asynchronously.
type AgentRequest struct {
	UserID      string `json:"user_id,omitempty"`
	UserName    string `json:"user_name,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	UserMessage string `json:"user_message,omitempty"`

	// IsThreadReply selects the continuation path; otherwise the agent runs
	// its scheduled kickoff.
	IsThreadReply bool `json:"is_thread_reply,omitempty"`

	// Recorded is set by the thread router after it has already appended the
	// inbound user turn to the conversation store, so the agent does not
	// append it a second time.
	Recorded bool `json:"recorded,omitempty"`
}

// AnalyzeRequest is the payload the webhook dispatcher sends to the workout
// analyzer. The field name matches the upstream webhook payload.
type AnalyzeRequest struct {
	WorkoutID string `json:"workoutId"`
}
