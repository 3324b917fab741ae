// internal/workers/ai-conversation/query-campaign-data/handler.go
package querycampaigndata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "query-campaign-data"
)

var (
	ErrCampaignDataQueryFailed = errors.New("CAMPAIGN_DATA_QUERY_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config      *Config
	db          *sql.DB
	esClient    *elasticsearch.Client
	redisClient *redis.Client
	logger      Logger
}

func NewHandler(config *Config, db *sql.DB, esClient *elasticsearch.Client, redisClient *redis.Client, log Logger) *Handler {
	return &Handler{
		config:      config,
		db:          db,
		esClient:    esClient,
		redisClient: redisClient,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "CAMPAIGN_DATA_QUERY_FAILED"
		retries := int32(0)
		if strings.Contains(err.Error(), "postgres") || strings.Contains(err.Error(), "elasticsearch") {
			retries = 2
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AccountID == "" {
		return nil, fmt.Errorf("%w: accountId is required", ErrCampaignDataQueryFailed)
	}

	cacheKey := h.buildCacheKey(input.AccountID, input.Entities)
	if val, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(val), &data); err == nil {
			return &Output{CampaignData: data}, nil
		}
	}

	filters := h.extractFilters(input.Entities)

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]interface{})
	errChan := make(chan error, 2)

	if h.shouldQueryDB(input.DataSources) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := h.queryPostgreSQL(ctx, input.AccountID, filters)
			if err != nil {
				errChan <- fmt.Errorf("postgres: %w", err)
				return
			}
			mu.Lock()
			for k, v := range data {
				results[k] = v
			}
			mu.Unlock()
		}()
	}

	if h.shouldQueryES(input.DataSources) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := h.queryElasticsearch(ctx, input.AccountID, filters)
			if err != nil {
				errChan <- fmt.Errorf("elasticsearch: %w", err)
				return
			}
			mu.Lock()
			for k, v := range data {
				results[k] = v
			}
			mu.Unlock()
		}()
	}

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		return nil, fmt.Errorf("%w: %v", ErrCampaignDataQueryFailed, err)
	}

	if len(results) > 0 {
		data, _ := json.Marshal(results)
		h.redisClient.Set(ctx, cacheKey, data, h.config.CacheTTL)
	}

	h.logger.Info("campaign data queried successfully", map[string]interface{}{
		"accountId":   input.AccountID,
		"entityCount": len(input.Entities),
		"resultCount": len(results),
	})

	return &Output{CampaignData: results}, nil
}

func (h *Handler) buildCacheKey(accountID string, entities []Entity) string {
	parts := make([]string, len(entities))
	for i, e := range entities {
		parts[i] = e.Type + ":" + e.Value
	}
	return "ai:campaign:" + accountID + ":" + strings.Join(parts, "|")
}

func (h *Handler) extractFilters(entities []Entity) map[string]interface{} {
	filters := make(map[string]interface{})
	for _, entity := range entities {
		switch entity.Type {
		case "campaign_name":
			if names, ok := filters["campaign_names"].([]string); ok {
				filters["campaign_names"] = append(names, entity.Value)
			} else {
				filters["campaign_names"] = []string{entity.Value}
			}
		case "platform":
			if platforms, ok := filters["platforms"].([]string); ok {
				filters["platforms"] = append(platforms, entity.Value)
			} else {
				filters["platforms"] = []string{entity.Value}
			}
		case "status":
			if statuses, ok := filters["statuses"].([]string); ok {
				filters["statuses"] = append(statuses, entity.Value)
			} else {
				filters["statuses"] = []string{entity.Value}
			}
		case "budget":
			if amount, err := h.parseMoney(entity.Value); err == nil {
				filters["min_budget"] = amount
			}
		}
	}
	return filters
}

func (h *Handler) shouldQueryDB(dataSources []string) bool {
	for _, source := range dataSources {
		if source == "campaign_db" {
			return true
		}
	}
	return false
}

func (h *Handler) shouldQueryES(dataSources []string) bool {
	for _, source := range dataSources {
		if source == "search_index" {
			return true
		}
	}
	return false
}

func (h *Handler) queryPostgreSQL(ctx context.Context, accountID string, filters map[string]interface{}) (map[string]interface{}, error) {
	results := make(map[string]interface{})

	if names, ok := filters["campaign_names"].([]string); ok && len(names) > 0 {
		placeholders := make([]string, len(names))
		args := []interface{}{accountID}
		for i, name := range names {
			placeholders[i] = "$" + strconv.Itoa(i+2)
			args = append(args, "%"+name+"%")
		}
		args = append(args, h.config.MaxResults)
		limitPlaceholder := "$" + strconv.Itoa(len(names)+2)

		query := `SELECT id, name, platform, status, daily_budget
		          FROM campaigns
		          WHERE account_id = $1 AND name ILIKE ANY(ARRAY[` + strings.Join(placeholders, ",") + `]) LIMIT ` + limitPlaceholder

		rows, err := h.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var campaigns []map[string]interface{}
		for rows.Next() {
			var id, name, platform, status string
			var dailyBudget float64
			if err := rows.Scan(&id, &name, &platform, &status, &dailyBudget); err != nil {
				return nil, err
			}
			campaigns = append(campaigns, map[string]interface{}{
				"id":          id,
				"name":        name,
				"platform":    platform,
				"status":      status,
				"dailyBudget": dailyBudget,
			})
		}
		results["campaigns"] = campaigns

		// Thirty day rollup for the same name filter
		metricsQuery := `SELECT c.id, c.name, COALESCE(SUM(m.impressions), 0), COALESCE(SUM(m.clicks), 0),
		          COALESCE(SUM(m.cost), 0), COALESCE(SUM(m.attributed_sales), 0)
		          FROM campaigns c
		          JOIN campaign_daily_metrics m ON c.id = m.campaign_id
		          WHERE c.account_id = $1 AND c.name ILIKE ANY(ARRAY[` + strings.Join(placeholders, ",") + `])
		          AND m.date >= CURRENT_DATE - 30
		          GROUP BY c.id, c.name LIMIT ` + limitPlaceholder

		metricRows, err := h.db.QueryContext(ctx, metricsQuery, args...)
		if err != nil {
			return nil, err
		}
		defer metricRows.Close()

		var metrics []map[string]interface{}
		for metricRows.Next() {
			var id, name string
			var impressions, clicks int64
			var cost, sales float64
			if err := metricRows.Scan(&id, &name, &impressions, &clicks, &cost, &sales); err != nil {
				return nil, err
			}

			ctr := 0.0
			if impressions > 0 {
				ctr = float64(clicks) / float64(impressions) * 100
			}
			roas := 0.0
			if cost > 0 {
				roas = sales / cost
			}

			metrics = append(metrics, map[string]interface{}{
				"campaignId":   id,
				"campaignName": name,
				"impressions":  impressions,
				"clicks":       clicks,
				"cost":         cost,
				"sales":        sales,
				"ctr":          ctr,
				"roas":         roas,
			})
		}
		results["recentMetrics"] = metrics
	}

	if platforms, ok := filters["platforms"].([]string); ok && len(platforms) > 0 {
		placeholders := make([]string, len(platforms))
		args := []interface{}{accountID}
		for i, platform := range platforms {
			placeholders[i] = "$" + strconv.Itoa(i+2)
			args = append(args, platform)
		}

		query := `SELECT platform, COUNT(*), COALESCE(SUM(daily_budget), 0)
		          FROM campaigns
		          WHERE account_id = $1 AND platform = ANY(ARRAY[` + strings.Join(placeholders, ",") + `])
		          GROUP BY platform`

		rows, err := h.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var summaries []map[string]interface{}
		for rows.Next() {
			var platform string
			var campaignCount int
			var totalDailyBudget float64
			if err := rows.Scan(&platform, &campaignCount, &totalDailyBudget); err != nil {
				return nil, err
			}
			summaries = append(summaries, map[string]interface{}{
				"platform":         platform,
				"campaignCount":    campaignCount,
				"totalDailyBudget": totalDailyBudget,
			})
		}
		results["platformSummary"] = summaries
	}

	return results, nil
}

func (h *Handler) queryElasticsearch(ctx context.Context, accountID string, filters map[string]interface{}) (map[string]interface{}, error) {
	queryBody := h.buildSearchQuery(accountID, filters)

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{"campaigns"},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, h.esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	hits, ok := r["hits"].(map[string]interface{})["hits"].([]interface{})
	if !ok {
		return map[string]interface{}{"searchResults": []interface{}{}}, nil
	}

	var docs []map[string]interface{}
	for _, hit := range hits {
		if h, ok := hit.(map[string]interface{}); ok {
			if source, ok := h["_source"].(map[string]interface{}); ok {
				docs = append(docs, source)
			}
		}
	}

	return map[string]interface{}{"searchResults": docs}, nil
}

func (h *Handler) buildSearchQuery(accountID string, filters map[string]interface{}) map[string]interface{} {
	mustClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"account_id": accountID},
		},
	}

	if names, ok := filters["campaign_names"].([]string); ok && len(names) > 0 {
		for _, name := range names {
			mustClauses = append(mustClauses, map[string]interface{}{
				"match": map[string]interface{}{"name": name},
			})
		}
	}

	if platforms, ok := filters["platforms"].([]string); ok && len(platforms) > 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"terms": map[string]interface{}{"platform.keyword": platforms},
		})
	}

	if statuses, ok := filters["statuses"].([]string); ok && len(statuses) > 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"terms": map[string]interface{}{"status.keyword": statuses},
		})
	}

	if minBudget, ok := filters["min_budget"].(int); ok {
		mustClauses = append(mustClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"daily_budget": map[string]interface{}{"gte": minBudget},
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": mustClauses},
		},
		"size": h.config.MaxResults,
	}
}

func (h *Handler) parseMoney(s string) (int, error) {
	re := regexp.MustCompile(`[^\d]`)
	clean := re.ReplaceAllString(s, "")
	if clean == "" {
		return 0, errors.New("not a number")
	}
	return strconv.Atoi(clean)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
