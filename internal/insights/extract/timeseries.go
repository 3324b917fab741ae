// internal/insights/extract/timeseries.go
package extract

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

const minTimeSeriesPoints = 3

var timeSeriesTriggerRE = regexp.MustCompile(`(?i)\b(trend|over time|time series|daily|weekly|monthly|by (day|week|month))\b`)

// timeSeriesExtractor recognizes dated observation lines under a trend
// heading, one point per line, one or more metrics per point.
type timeSeriesExtractor struct {
	vocab vocabulary.Vocabulary
}

func (e *timeSeriesExtractor) Shape() models.ShapeKind { return models.ShapeTimeSeries }

func (e *timeSeriesExtractor) Extract(content string) []CandidateMatch {
	var matches []CandidateMatch
	for _, sec := range findSections(splitLines(content), timeSeriesTriggerRE) {
		data, spanEnd := e.parseSeries(sec.items)
		if len(data.Points) < minTimeSeriesPoints {
			continue
		}
		series := data
		matches = append(matches, CandidateMatch{
			Shape:      models.ShapeTimeSeries,
			Confidence: ConfidenceTimeSeries,
			Span:       [2]int{sec.trigger.start, spanEnd},
			Title:      sectionTitle(sec.trigger.text),
			Payload:    models.ShapePayload{TimeSeries: &series},
		})
	}
	return matches
}

func (e *timeSeriesExtractor) parseSeries(items []line) (models.TimeSeriesData, int) {
	var data models.TimeSeriesData
	seenKinds := make(map[models.MetricKind]bool)
	spanEnd := 0
	for _, ln := range items {
		loc := dateRE.FindStringIndex(ln.text)
		if loc == nil {
			continue
		}
		pairs := metricPairs(ln.text[loc[1]:], e.vocab)
		if len(pairs) == 0 {
			continue
		}
		point := models.TimeSeriesPoint{
			Date:   strings.TrimSpace(ln.text[loc[0]:loc[1]]),
			Values: make(map[models.MetricKind]float64, len(pairs)),
		}
		for _, mv := range pairs {
			point.Values[mv.Kind] = mv.Value.Raw
			if !seenKinds[mv.Kind] {
				data.Metrics = append(data.Metrics, mv.Kind)
				seenKinds[mv.Kind] = true
			}
		}
		data.Points = append(data.Points, point)
		spanEnd = ln.end
	}
	return data, spanEnd
}
