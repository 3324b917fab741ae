// internal/workers/ai-conversation/query-campaign-data/models.go
package querycampaigndata

type Input struct {
	AccountID   string   `json:"accountId"`
	Entities    []Entity `json:"entities"`
	DataSources []string `json:"dataSources"`
}

type Output struct {
	CampaignData map[string]interface{} `json:"campaignData"`
}

type Entity struct {
	Type  string `json:"type"` // "campaign_name", "platform", "status", "budget"
	Value string `json:"value"`
}
