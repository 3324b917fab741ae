// internal/models/metric.go
package models

// MetricKind is the closed set of canonical advertising metrics. Every
// textual synonym an extractor recognizes resolves to exactly one kind;
// unrecognized labels are dropped, never invented.
type MetricKind string

const (
	MetricImpressions MetricKind = "impressions"
	MetricClicks      MetricKind = "clicks"
	MetricCost        MetricKind = "cost"
	MetricConversions MetricKind = "conversions"
	MetricCTR         MetricKind = "ctr"
	MetricROAS        MetricKind = "roas"
	MetricSales       MetricKind = "sales"
)

// AllMetricKinds lists every kind in a stable order, used for iteration and
// validation.
var AllMetricKinds = []MetricKind{
	MetricImpressions,
	MetricClicks,
	MetricCost,
	MetricConversions,
	MetricCTR,
	MetricROAS,
	MetricSales,
}

// DisplayTitle returns the human-readable label used on KPI cards and chart
// legends.
func (k MetricKind) DisplayTitle() string {
	switch k {
	case MetricImpressions:
		return "Impressions"
	case MetricClicks:
		return "Clicks"
	case MetricCost:
		return "Cost"
	case MetricConversions:
		return "Conversions"
	case MetricCTR:
		return "CTR"
	case MetricROAS:
		return "ROAS"
	case MetricSales:
		return "Sales"
	default:
		return string(k)
	}
}

// Unit returns the semantic unit for the kind. The unit is decided by the
// metric, never by the symbols that happened to surround the raw token.
func (k MetricKind) Unit() MetricUnit {
	switch k {
	case MetricCTR:
		return UnitPercent
	case MetricROAS:
		return UnitRatio
	case MetricCost, MetricSales:
		return UnitCurrency
	default:
		return UnitCount
	}
}

// MetricUnit determines how a normalized value is formatted downstream.
type MetricUnit string

const (
	UnitCurrency MetricUnit = "currency"
	UnitPercent  MetricUnit = "percent"
	UnitRatio    MetricUnit = "ratio"
	UnitCount    MetricUnit = "count"
)

// NormalizedValue is a parsed numeric value with its inferred unit. Raw has
// thousands separators and currency symbols already stripped; DisplayHint
// carries the original token for renderers that prefer the source formatting.
type NormalizedValue struct {
	Raw         float64    `json:"raw"`
	Unit        MetricUnit `json:"unit"`
	DisplayHint string     `json:"displayHint"`
}

// MetricValue pairs a canonical metric with its normalized value.
type MetricValue struct {
	Kind  MetricKind      `json:"kind"`
	Value NormalizedValue `json:"value"`
}
