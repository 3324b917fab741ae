package models

import "time"

// Conversation groups the messages of one analysis chat.
type Conversation struct {
	ID        string                 `json:"id" db:"id"`
	UserID    string                 `json:"userId" db:"user_id"`
	Title     string                 `json:"title" db:"title"`
	CreatedAt time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time              `json:"updatedAt" db:"updated_at"`
	IsActive  bool                   `json:"isActive" db:"is_active"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

// ConversationMessage is one persisted chat turn.
type ConversationMessage struct {
	ID             string      `json:"id" db:"id"`
	ConversationID string      `json:"conversationId" db:"conversation_id"`
	Role           MessageRole `json:"role" db:"role"`
	Content        string      `json:"content" db:"content"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
}

// Touch updates the conversation's activity timestamp.
func (c *Conversation) Touch() {
	c.UpdatedAt = time.Now()
}

// ConversationRepository defines conversation data access
type ConversationRepository interface {
	Create(conversation *Conversation) error
	FindByID(id string) (*Conversation, error)
	FindByUserID(userID string) ([]*Conversation, error)
	AppendMessage(message *ConversationMessage) error
	Messages(conversationID string) ([]*ConversationMessage, error)
	Delete(conversationID string) error
}
