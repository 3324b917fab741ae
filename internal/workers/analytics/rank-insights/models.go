// internal/workers/analytics/rank-insights/models.go
package rankinsights

type Input struct {
	Insights       []InsightCandidate `json:"insights"`
	InsightDetails []InsightDetail    `json:"insightDetails"`
	Preferences    UserPreferences    `json:"preferences"`
}

type InsightCandidate struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"` // Elasticsearch _score
	Source map[string]interface{} `json:"_source"`
}

type InsightDetail struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	CampaignID string   `json:"campaignId"`
	Platforms  []string `json:"platforms"`
	Metrics    []string `json:"metrics"`
	Severity   string   `json:"severity"` // "info", "warning", "critical"
	ViewCount  int      `json:"viewCount"`
	SaveCount  int      `json:"saveCount"`
	UpdatedAt  string   `json:"updatedAt"` // ISO 8601
}

type UserPreferences struct {
	Platforms    []string `json:"platforms"`
	FocusMetrics []string `json:"focusMetrics"`
}

type Output struct {
	RankedInsights []RankedInsight `json:"rankedInsights"`
}

type RankedInsight struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	FinalScore      float64 `json:"finalScore"`
	SearchScore     float64 `json:"searchScore"`
	AffinityScore   float64 `json:"affinityScore"`
	EngagementScore float64 `json:"engagementScore"`
	FreshnessScore  float64 `json:"freshnessScore"`
}
