// internal/workers/ai-conversation/save-conversation/models.go
package saveconversation

type Input struct {
	ConversationID string `json:"conversationId,omitempty"`
	AccountID      string `json:"accountId"`
	MessageID      string `json:"messageId,omitempty"`
	Role           string `json:"role"`
	Content        string `json:"content"`
}

type Output struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	CreatedAt      string `json:"createdAt"` // ISO 8601
}
