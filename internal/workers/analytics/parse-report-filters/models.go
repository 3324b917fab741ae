// internal/workers/analytics/parse-report-filters/models.go
package parsereportfilters

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
}

type Output struct {
	ParsedFilters ParsedFilters `json:"parsedFilters"`
}

type ParsedFilters struct {
	Platforms  []string   `json:"platforms"`
	Metrics    []string   `json:"metrics"`
	DateRange  DateRange  `json:"dateRange"`
	SpendRange SpendRange `json:"spendRange"`
	Keywords   string     `json:"keywords"`
	SortBy     string     `json:"sortBy"`
	Pagination Pagination `json:"pagination"`
}

type DateRange struct {
	From string `json:"from"` // inclusive, YYYY-MM-DD
	To   string `json:"to"`
}

type SpendRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}
