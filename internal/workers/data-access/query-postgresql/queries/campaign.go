// internal/workers/data-access/query-postgresql/queries/campaign.go
package queries

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/lib/pq"

	"adinsight-workers/internal/models"
)

func CampaignFullDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	campaignID, ok := params["campaignId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var c models.Campaign
	var endDate sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, name, platform, status, objective, daily_budget,
		       start_date, end_date, created_at, updated_at
		FROM campaigns
		WHERE id = $1`, campaignID).Scan(
		&c.ID, &c.Name, &c.Platform, &c.Status, &c.Objective, &c.DailyBudget,
		&c.StartDate, &endDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	if endDate.Valid {
		c.EndDate = endDate.String
	}

	// Lifetime totals live in the metrics table, not on the campaign row.
	var totalImpressions, totalClicks, totalConversions sql.NullInt64
	var totalSpend, totalSales sql.NullFloat64
	var lastMetricDate sql.NullString
	err = db.QueryRowContext(ctx, `
		SELECT SUM(impressions), SUM(clicks), SUM(conversions),
		       SUM(cost), SUM(attributed_sales), MAX(date)
		FROM campaign_daily_metrics
		WHERE campaign_id = $1`, campaignID).Scan(
		&totalImpressions, &totalClicks, &totalConversions,
		&totalSpend, &totalSales, &lastMetricDate,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	lifetime := models.CampaignDailyMetric{
		CampaignID:  campaignID,
		Impressions: totalImpressions.Int64,
		Clicks:      totalClicks.Int64,
		Cost:        totalSpend.Float64,
		Conversions: totalConversions.Int64,
		Sales:       totalSales.Float64,
	}

	result := map[string]interface{}{
		"campaign":         c,
		"totalImpressions": totalImpressions.Int64,
		"totalClicks":      totalClicks.Int64,
		"totalConversions": totalConversions.Int64,
		"totalSpend":       totalSpend.Float64,
		"totalSales":       totalSales.Float64,
		"ctr":              lifetime.CTR(),
		"roas":             lifetime.ROAS(),
		"lastMetricDate":   lastMetricDate.String,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func CampaignDailyMetrics(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	campaignID, ok := params["campaignId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	dateFrom, dateTo := "", ""
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		if v, ok := filters["dateFrom"].(string); ok {
			dateFrom = v
		}
		if v, ok := filters["dateTo"].(string); ok {
			dateTo = v
		}
	}

	start := time.Now()

	query := `
		SELECT campaign_id, date, impressions, clicks, cost, conversions, attributed_sales
		FROM campaign_daily_metrics
		WHERE campaign_id = $1`
	args := []interface{}{campaignID}
	if dateFrom != "" {
		args = append(args, dateFrom)
		query += ` AND date >= $2`
	}
	if dateTo != "" {
		args = append(args, dateTo)
		if dateFrom != "" {
			query += ` AND date <= $3`
		} else {
			query += ` AND date <= $2`
		}
	}
	query += ` ORDER BY date ASC`
	if maxRows, ok := params["maxRows"].(int); ok && maxRows > 0 {
		query += ` LIMIT ` + strconv.Itoa(maxRows)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var m models.CampaignDailyMetric
		err := rows.Scan(&m.CampaignID, &m.Date, &m.Impressions, &m.Clicks, &m.Cost, &m.Conversions, &m.Sales)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"campaignId":  m.CampaignID,
			"date":        m.Date,
			"impressions": m.Impressions,
			"clicks":      m.Clicks,
			"cost":        m.Cost,
			"conversions": m.Conversions,
			"sales":       m.Sales,
			"ctr":         m.CTR(),
			"roas":        m.ROAS(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func CampaignList(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	accountID, hasAccount := params["accountId"].(string)
	campaignIDs, hasIDs := params["campaignIds"].([]string)
	if !hasAccount && (!hasIDs || len(campaignIDs) == 0) {
		return nil, 0, 0, ErrMissingParam
	}

	platform, status := "", ""
	if filters, ok := params["filters"].(map[string]interface{}); ok {
		if v, ok := filters["platform"].(string); ok {
			platform = v
		}
		if v, ok := filters["status"].(string); ok {
			status = v
		}
	}

	start := time.Now()

	query := `
		SELECT id, name, platform, status, objective, daily_budget, start_date, end_date
		FROM campaigns
		WHERE 1=1`
	args := []interface{}{}
	nextArg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if hasAccount && accountID != "" {
		query += ` AND account_id = ` + nextArg(accountID)
	}
	if hasIDs && len(campaignIDs) > 0 {
		query += ` AND id = ANY(` + nextArg(pq.Array(campaignIDs)) + `)`
	}
	if platform != "" {
		query += ` AND platform = ` + nextArg(platform)
	}
	if status != "" {
		query += ` AND status = ` + nextArg(status)
	}
	query += ` ORDER BY name ASC`
	if maxRows, ok := params["maxRows"].(int); ok && maxRows > 0 {
		query += ` LIMIT ` + nextArg(maxRows)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var c models.Campaign
		var endDate sql.NullString
		err := rows.Scan(&c.ID, &c.Name, &c.Platform, &c.Status, &c.Objective, &c.DailyBudget, &c.StartDate, &endDate)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":          c.ID,
			"name":        c.Name,
			"platform":    c.Platform,
			"status":      c.Status,
			"objective":   c.Objective,
			"dailyBudget": c.DailyBudget,
			"startDate":   c.StartDate,
			"endDate":     endDate.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
