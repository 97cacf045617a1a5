package domain

// ConversationRecord is a single persisted thread turn. ThreadID is the
// partition key, Timestamp (RFC3339Nano, UTC) the sort key; insertion order
// defines chronology. The most recent record's Agent field is authoritative
// for routing replies to that thread.
type ConversationRecord struct {
	ThreadID  string
	Timestamp string
	Role      string
	Text      string
	Agent     Agent
	ExpiresAt int64
}
