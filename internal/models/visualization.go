// internal/models/visualization.go
package models

import "encoding/json"

// ShapeKind identifies one of the structured-data patterns the engine can
// recognize inside message text.
type ShapeKind string

const (
	ShapeKPIDashboard   ShapeKind = "kpi-dashboard"
	ShapeTimeSeries     ShapeKind = "time-series"
	ShapeComparison     ShapeKind = "comparison"
	ShapeDistribution   ShapeKind = "distribution"
	ShapeTimeline       ShapeKind = "timeline"
	ShapeTreemap        ShapeKind = "treemap"
	ShapeTable          ShapeKind = "table"
	ShapeCampaignRecord ShapeKind = "campaign-record"

	// ShapeText is the renderer fallback for content no extractor claimed.
	// The engine never emits a descriptor with this kind; consumers use it
	// as the default case when switching on ShapeKind.
	ShapeText ShapeKind = "text"
)

// KPIEntry is one card on a KPI dashboard.
type KPIEntry struct {
	Title         string          `json:"title"`
	Value         NormalizedValue `json:"value"`
	ChangePercent *float64        `json:"changePercent,omitempty"`
}

// TimeSeriesPoint is one dated observation carrying a value per metric.
// It marshals flat, `{"date": ..., "impressions": 1200, ...}`, which is the
// shape charting components consume.
type TimeSeriesPoint struct {
	Date   string
	Values map[MetricKind]float64
}

func (p TimeSeriesPoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(p.Values)+1)
	flat["date"] = p.Date
	for kind, v := range p.Values {
		flat[string(kind)] = v
	}
	return json.Marshal(flat)
}

func (p *TimeSeriesPoint) UnmarshalJSON(data []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	p.Values = make(map[MetricKind]float64)
	for key, v := range flat {
		if key == "date" {
			if s, ok := v.(string); ok {
				p.Date = s
			}
			continue
		}
		if f, ok := v.(float64); ok {
			p.Values[MetricKind(key)] = f
		}
	}
	return nil
}

// TimeSeriesData is an ordered series of points for one or more metrics.
type TimeSeriesData struct {
	Metrics []MetricKind      `json:"metrics"`
	Points  []TimeSeriesPoint `json:"points"`
}

// ComparisonEntity is one side of an entity-vs-entity comparison.
type ComparisonEntity struct {
	EntityName string        `json:"entityName"`
	Metrics    []MetricValue `json:"metrics"`
}

// DistributionSlice is one named share of a whole, in percentage points.
// Slices are not required to sum to 100.
type DistributionSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TimelineEvent is one dated entry on a timeline. Events are emitted in the
// order they appear in the text; sorting by date is the renderer's job.
type TimelineEvent struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TreemapNode is one node of a hierarchical breakdown.
type TreemapNode struct {
	Name     string        `json:"name"`
	Value    float64       `json:"value"`
	Children []TreemapNode `json:"children,omitempty"`
}

// TableData is a parsed markdown table. Every row holds exactly
// len(Headers) cells; rows with a different width were filtered out during
// extraction.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// CampaignRecord is a campaign identified by its numeric ID together with
// any metrics found near the mention.
type CampaignRecord struct {
	ID      string        `json:"id"`
	Name    string        `json:"name,omitempty"`
	Metrics []MetricValue `json:"metrics"`
}

// ShapePayload is the tagged union of per-shape data. Exactly one field is
// non-nil, matching the descriptor's ShapeKind; the zero value means "no
// structured data" and belongs only to ShapeText.
type ShapePayload struct {
	KPI             []KPIEntry          `json:"kpi,omitempty"`
	TimeSeries      *TimeSeriesData     `json:"timeSeries,omitempty"`
	Comparison      []ComparisonEntity  `json:"comparison,omitempty"`
	Distribution    []DistributionSlice `json:"distribution,omitempty"`
	Timeline        []TimelineEvent     `json:"timeline,omitempty"`
	Treemap         []TreemapNode       `json:"treemap,omitempty"`
	Table           *TableData          `json:"table,omitempty"`
	CampaignRecords []CampaignRecord    `json:"campaignRecords,omitempty"`
}

// VisualizationDescriptor is the externally visible extraction result. The
// rendering layer maps Shape to a chart component and shows OriginalText as
// the literal source substring, never re-deriving it.
type VisualizationDescriptor struct {
	Shape        ShapeKind    `json:"shape"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Data         ShapePayload `json:"data"`
	OriginalText string       `json:"originalText"`
}
