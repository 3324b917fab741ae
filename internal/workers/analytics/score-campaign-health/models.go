// internal/workers/analytics/score-campaign-health/models.go
package scorecampaignhealth

type Input struct {
	CampaignID string            `json:"campaignId"`
	Targets    HealthTargets     `json:"targets"`
	Snapshot   *CampaignSnapshot `json:"campaignSnapshot,omitempty"`
}

type HealthTargets struct {
	BenchmarkCTR float64 `json:"benchmarkCtr"`
	TargetROAS   float64 `json:"targetRoas"`
}

// CampaignSnapshot carries the thirty day performance rollup a score is
// computed from. It is either provided on the job or loaded from cache/DB.
type CampaignSnapshot struct {
	CTR            float64 `json:"ctr"`
	ROAS           float64 `json:"roas"`
	DailyBudget    float64 `json:"dailyBudget"`
	AvgDailySpend  float64 `json:"avgDailySpend"`
	LastMetricDate string  `json:"lastMetricDate"`
}

type Output struct {
	HealthScore   int           `json:"healthScore"`
	HealthStatus  string        `json:"healthStatus"`
	HealthFactors HealthFactors `json:"healthFactors"`
}

type HealthFactors struct {
	EngagementFit int `json:"engagementFit"`
	EfficiencyFit int `json:"efficiencyFit"`
	PacingFit     int `json:"pacingFit"`
	FreshnessFit  int `json:"freshnessFit"`
}
