// internal/models/message.go
package models

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// RawMessage is a single chat message as delivered by the conversation
// transport. It is immutable input to the classification engine: the engine
// reads Content and Role, never mutates them.
type RawMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// IsUser reports whether the message was typed by the end user rather than
// produced by the model.
func (m RawMessage) IsUser() bool {
	return m.Role == RoleUser
}
