// internal/models/campaign.go
package models

type Campaign struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Platform    string  `json:"platform"` // "google_ads", "meta_ads", "amazon_ads", "tiktok_ads"
	Status      string  `json:"status"`   // "active", "paused", "ended"
	Objective   string  `json:"objective"`
	DailyBudget float64 `json:"dailyBudget"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type CampaignDailyMetric struct {
	CampaignID  string  `json:"campaignId"`
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Conversions int64   `json:"conversions"`
	Sales       float64 `json:"sales"`
}

// CTR returns clicks over impressions in percentage points, 0 when the
// campaign served no impressions that day.
func (m CampaignDailyMetric) CTR() float64 {
	if m.Impressions == 0 {
		return 0
	}
	return float64(m.Clicks) / float64(m.Impressions) * 100
}

// ROAS returns sales over cost as a ratio, 0 when nothing was spent.
func (m CampaignDailyMetric) ROAS() float64 {
	if m.Cost == 0 {
		return 0
	}
	return m.Sales / m.Cost
}

type CampaignSnapshot struct {
	Campaign    Campaign              `json:"campaign"`
	Metrics     []CampaignDailyMetric `json:"metrics"`
	LastMetric  string                `json:"lastMetricDate"`
	TotalSpend  float64               `json:"totalSpend"`
	TotalSales  float64               `json:"totalSales"`
	HealthScore float64               `json:"healthScore,omitempty"`
}
