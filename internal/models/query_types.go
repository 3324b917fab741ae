// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeCampaignFullDetails  QueryType = "campaign_full_details"
	QueryTypeCampaignDailyMetrics QueryType = "campaign_daily_metrics"
	QueryTypeCampaignList         QueryType = "campaign_list"
	QueryTypeConversationHistory  QueryType = "conversation_history"
	QueryTypeAccountSummary       QueryType = "account_summary"
)
