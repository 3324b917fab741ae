// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "adinsight-workers/internal/models"

type Input struct {
	QueryType      QueryType              `json:"queryType"`
	CampaignID     string                 `json:"campaignId,omitempty"`
	CampaignIDs    []string               `json:"campaignIds,omitempty"`
	ConversationID string                 `json:"conversationId,omitempty"`
	AccountID      string                 `json:"accountId,omitempty"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

// Export constants for external use
var (
	QueryTypeCampaignFullDetails  = models.QueryTypeCampaignFullDetails
	QueryTypeCampaignDailyMetrics = models.QueryTypeCampaignDailyMetrics
	QueryTypeCampaignList         = models.QueryTypeCampaignList
	QueryTypeConversationHistory  = models.QueryTypeConversationHistory
	QueryTypeAccountSummary       = models.QueryTypeAccountSummary
)
