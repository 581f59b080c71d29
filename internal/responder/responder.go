package responder

import (
	"context"
)

// Reply is one agent-under-test message, with the optional intent metadata
// some backends return.
type Reply struct {
	Text       string  `json:"text"`
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Responder produces the agent-under-test side of the conversation.
// Implementations recover their own backend failures; an error return means
// the responder could not produce any message at all.
type Responder interface {
	Respond(ctx context.Context, message string, sessionID string) (Reply, error)
}
