// internal/workers/data-access/query-postgresql/queries/conversation.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func ConversationHistory(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	conversationID, ok := params["conversationId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	limit := 50
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		if v, ok := filters["limit"].(float64); ok && v >= 1 && v <= 200 {
			limit = int(v)
		}
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2`, conversationID, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, convID, role, content, createdAt string
		err := rows.Scan(&id, &convID, &role, &content, &createdAt)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":             id,
			"conversationId": convID,
			"role":           role,
			"content":        content,
			"createdAt":      createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func AccountSummary(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	accountID, ok := params["accountId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var totalCampaigns, activeCampaigns int
	var totalBudget sql.NullFloat64
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       SUM(daily_budget)
		FROM campaigns
		WHERE account_id = $1`, accountID).Scan(
		&totalCampaigns, &activeCampaigns, &totalBudget,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	var totalSpend, totalSales sql.NullFloat64
	var totalClicks, totalImpressions sql.NullInt64
	err = db.QueryRowContext(ctx, `
		SELECT SUM(m.cost), SUM(m.attributed_sales), SUM(m.clicks), SUM(m.impressions)
		FROM campaign_daily_metrics m
		JOIN campaigns c ON c.id = m.campaign_id
		WHERE c.account_id = $1`, accountID).Scan(
		&totalSpend, &totalSales, &totalClicks, &totalImpressions,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"accountId":        accountID,
		"totalCampaigns":   totalCampaigns,
		"activeCampaigns":  activeCampaigns,
		"totalBudget":      totalBudget.Float64,
		"totalSpend":       totalSpend.Float64,
		"totalSales":       totalSales.Float64,
		"totalClicks":      totalClicks.Int64,
		"totalImpressions": totalImpressions.Int64,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
