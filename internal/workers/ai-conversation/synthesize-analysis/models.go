// internal/workers/ai-conversation/synthesize-analysis/models.go
package synthesizeanalysis

type Input struct {
	Question     string                 `json:"question"`
	CampaignData map[string]interface{} `json:"campaignData"`
	Benchmarks   []Benchmark            `json:"benchmarks"`
	Conversation []PriorMessage         `json:"conversation,omitempty"`
}

type Output struct {
	AnalysisText string   `json:"analysisText"`
	Confidence   float64  `json:"confidence"`
	Highlights   []string `json:"highlights"`
}

type Benchmark struct {
	Platform string  `json:"platform"`
	Vertical string  `json:"vertical"`
	Metric   string  `json:"metric"`
	Median   float64 `json:"median"`
	P25      float64 `json:"p25"`
	P75      float64 `json:"p75"`
}

type PriorMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
