// internal/insights/request/detector.go
package request

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

// Detector recognizes user messages that directly ask for a chart ("show me
// a bar chart of clicks") and answers them with a placeholder descriptor,
// to be replaced once the real analysis streams in. It never fires on
// assistant messages.
type Detector struct {
	vocab vocabulary.Vocabulary
}

func NewDetector(vocab vocabulary.Vocabulary) *Detector {
	return &Detector{vocab: vocab}
}

var (
	requestVerbRE = regexp.MustCompile(`(?i)\b(show|give|create|generate|make|draw|display|plot)\b`)
	requestNounRE = regexp.MustCompile(`(?i)\b(charts?|graphs?|plots?|visuali[sz]ations?|dashboards?|treemaps?|tables?)\b`)

	treemapTypeRE      = regexp.MustCompile(`(?i)\b(treemaps?|tree map|hierarchy)\b`)
	distributionTypeRE = regexp.MustCompile(`(?i)\b(pie|donut|doughnut|distribution|split|share)\b`)
	comparisonTypeRE   = regexp.MustCompile(`(?i)\b(bar|column|comparison|compare|versus|vs)\b`)
	tableTypeRE        = regexp.MustCompile(`(?i)\btables?\b`)
	kpiTypeRE          = regexp.MustCompile(`(?i)\b(kpis?|dashboards?|summary|overview)\b`)

	granularityRE = regexp.MustCompile(`(?i)\b(daily|day|weekly|week|monthly|month|quarterly|quarter|yearly|year|annual)\b`)
)

// Detect returns a synthetic descriptor for a direct chart request, or nil
// when the message is not one. The caller short-circuits classification on
// a non-nil result.
func (d *Detector) Detect(msg models.RawMessage) *models.VisualizationDescriptor {
	if msg.Role != models.RoleUser {
		return nil
	}
	if !requestVerbRE.MatchString(msg.Content) || !requestNounRE.MatchString(msg.Content) {
		return nil
	}

	shape := requestedShape(msg.Content)
	metrics := d.requestedMetrics(msg.Content)
	desc := buildPlaceholder(shape, metrics, requestedGranularity(msg.Content), msg.CreatedAt)
	desc.OriginalText = msg.Content
	return desc
}

// requestedShape maps the chart-type words in the request to a shape. A
// request that names no recognizable type gets a time-series chart.
func requestedShape(content string) models.ShapeKind {
	switch {
	case treemapTypeRE.MatchString(content):
		return models.ShapeTreemap
	case distributionTypeRE.MatchString(content):
		return models.ShapeDistribution
	case comparisonTypeRE.MatchString(content):
		return models.ShapeComparison
	case tableTypeRE.MatchString(content):
		return models.ShapeTable
	case kpiTypeRE.MatchString(content):
		return models.ShapeKPIDashboard
	default:
		return models.ShapeTimeSeries
	}
}

// requestedMetrics scans the request for metric mentions, defaulting to
// impressions and clicks when none are named.
func (d *Detector) requestedMetrics(content string) []models.MetricKind {
	if metrics := d.vocab.FindAll(content); len(metrics) > 0 {
		return metrics
	}
	return []models.MetricKind{models.MetricImpressions, models.MetricClicks}
}

func requestedGranularity(content string) Granularity {
	word := strings.ToLower(granularityRE.FindString(content))
	switch {
	case strings.HasPrefix(word, "da"):
		return GranularityDay
	case strings.HasPrefix(word, "we"):
		return GranularityWeek
	case strings.HasPrefix(word, "qu"):
		return GranularityQuarter
	case strings.HasPrefix(word, "ye"), strings.HasPrefix(word, "an"):
		return GranularityYear
	default:
		return GranularityMonth
	}
}

// Granularity is the time step of a requested series.
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)
