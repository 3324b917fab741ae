// internal/workers/infrastructure/check-usage-quota/models.go
package checkusagequota

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Allowed   bool   `json:"allowed"`
	Tier      string `json:"tier"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"resetAt"` // ISO 8601
}

type Subscription struct {
	UserID       string `json:"userId"`
	Tier         string `json:"tier"`
	MessageLimit int    `json:"messageLimit"`
	IsValid      bool   `json:"isValid"`
}
