// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	AccountID  string
	CampaignID string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "campaign_search":
		queryBody = buildCampaignSearchQuery(eq)
	case "insight_search":
		queryBody = buildInsightSearchQuery(eq)
	case "related_campaigns":
		queryBody = buildRelatedCampaignsQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{eq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &eq.Pagination.From,
		Size:   &eq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildCampaignSearchQuery builds the main campaign search query dynamically
func buildCampaignSearchQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search
	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "objective^2", "platform"},
				"type":   "best_fields",
			},
		})
	}

	// Account scoping
	if eq.AccountID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"account_id": eq.AccountID},
		})
	}

	// Platform filter, single value or list
	if platform, ok := eq.Filters["platform"].(string); ok && platform != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"platform": platform},
		})
	} else if platforms, ok := eq.Filters["platforms"].([]interface{}); ok && len(platforms) > 0 {
		terms := make([]string, 0, len(platforms))
		for _, p := range platforms {
			if s, ok := p.(string); ok {
				terms = append(terms, s)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"platform": terms},
			})
		}
	}

	// Status filter
	if status, ok := eq.Filters["status"].(string); ok && status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": status},
		})
	}

	// Spend range filter
	if clause, ok := buildNumericRange("spend", eq.Filters["spendRange"]); ok {
		filterClauses = append(filterClauses, clause)
	}

	// ROAS range filter
	if clause, ok := buildNumericRange("roas", eq.Filters["roasRange"]); ok {
		filterClauses = append(filterClauses, clause)
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "spend":
			query["sort"] = []map[string]interface{}{{"spend": "desc"}}
		case "roas":
			query["sort"] = []map[string]interface{}{{"roas": "desc"}}
		case "name":
			query["sort"] = []map[string]interface{}{{"name.keyword": "asc"}}
		}
	}

	return query
}

// buildInsightSearchQuery builds the stored-insight search query
func buildInsightSearchQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"title^3", "detail^2"},
				"type":   "best_fields",
			},
		})
	}

	if eq.AccountID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"account_id": eq.AccountID},
		})
	}

	if severity, ok := eq.Filters["severity"].(string); ok && severity != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"severity": severity},
		})
	}

	if platforms, ok := eq.Filters["platforms"].([]interface{}); ok && len(platforms) > 0 {
		terms := make([]string, 0, len(platforms))
		for _, p := range platforms {
			if s, ok := p.(string); ok {
				terms = append(terms, s)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"platforms": terms},
			})
		}
	}

	// Freshness window on updated_at, dates are YYYY-MM-DD
	if dateRange, ok := eq.Filters["dateRange"].(map[string]interface{}); ok {
		rangeBody := map[string]interface{}{}
		if from, ok := dateRange["from"].(string); ok && from != "" {
			rangeBody["gte"] = from
		}
		if to, ok := dateRange["to"].(string); ok && to != "" {
			rangeBody["lte"] = to
		}
		if len(rangeBody) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"updated_at": rangeBody},
			})
		}
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	if sortBy, ok := eq.Filters["sortBy"].(string); ok && sortBy == "date" {
		query["sort"] = []map[string]interface{}{{"updated_at": "desc"}}
	}

	return query
}

// buildRelatedCampaignsQuery builds the "similar campaigns" query
func buildRelatedCampaignsQuery(eq ElasticsearchQuery) map[string]interface{} {
	if eq.CampaignID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "objective", "platform"},
				"like": []map[string]interface{}{
					{"_index": eq.Index, "_id": eq.CampaignID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

// buildNumericRange turns a {min, max} filter value into a range clause.
// Zero and missing bounds are treated as open.
func buildNumericRange(field string, raw interface{}) (map[string]interface{}, bool) {
	bounds, ok := raw.(map[string]interface{})
	if !ok {
		return nil, false
	}

	rangeBody := map[string]interface{}{}
	if min, ok := toFloat(bounds["min"]); ok && min > 0 {
		rangeBody["gte"] = min
	}
	if max, ok := toFloat(bounds["max"]); ok && max > 0 {
		rangeBody["lte"] = max
	}
	if len(rangeBody) == 0 {
		return nil, false
	}

	return map[string]interface{}{
		"range": map[string]interface{}{field: rangeBody},
	}, true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
