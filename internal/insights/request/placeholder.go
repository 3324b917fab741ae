// internal/insights/request/placeholder.go
package request

import (
	"fmt"
	"math"
	"time"

	"adinsight-workers/internal/models"
)

const (
	placeholderPoints      = 6
	placeholderDescription = "Sample data shown while your analysis is prepared."
)

// Base amounts for sample data, chosen to look plausible on each chart
// type. All placeholder output is deterministic: same request and message
// timestamp, same descriptor.
var placeholderBase = map[models.MetricKind]float64{
	models.MetricImpressions: 12400,
	models.MetricClicks:      530,
	models.MetricCost:        1480,
	models.MetricConversions: 86,
	models.MetricCTR:         4.3,
	models.MetricROAS:        3.8,
	models.MetricSales:       5200,
}

func buildPlaceholder(shape models.ShapeKind, metrics []models.MetricKind, gran Granularity, at time.Time) *models.VisualizationDescriptor {
	desc := &models.VisualizationDescriptor{
		Shape:       shape,
		Title:       placeholderTitle(shape, metrics),
		Description: placeholderDescription,
	}
	switch shape {
	case models.ShapeKPIDashboard:
		desc.Data = placeholderKPIs(metrics)
	case models.ShapeComparison:
		desc.Data = placeholderComparison(metrics)
	case models.ShapeDistribution:
		desc.Data = placeholderDistribution()
	case models.ShapeTreemap:
		desc.Data = placeholderTreemap()
	case models.ShapeTable:
		desc.Data = placeholderTable(metrics, gran, at)
	default:
		desc.Data = placeholderSeries(metrics, gran, at)
	}
	return desc
}

func placeholderTitle(shape models.ShapeKind, metrics []models.MetricKind) string {
	switch shape {
	case models.ShapeKPIDashboard:
		return "Key Performance Indicators"
	case models.ShapeComparison:
		return "Campaign Comparison"
	case models.ShapeDistribution:
		return metrics[0].DisplayTitle() + " Distribution"
	case models.ShapeTreemap:
		return "Campaign Structure"
	case models.ShapeTable:
		return metrics[0].DisplayTitle() + " Data"
	default:
		return metrics[0].DisplayTitle() + " Trend"
	}
}

// placeholderSeries walks backward from the message timestamp so the sample
// chart ends "today" from the user's point of view. A zero timestamp falls
// back to a fixed anchor to keep output deterministic.
func placeholderSeries(metrics []models.MetricKind, gran Granularity, at time.Time) models.ShapePayload {
	anchor := at
	if anchor.IsZero() {
		anchor = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	points := make([]models.TimeSeriesPoint, 0, placeholderPoints)
	for i := placeholderPoints - 1; i >= 0; i-- {
		var date time.Time
		switch gran {
		case GranularityDay:
			date = anchor.AddDate(0, 0, -i)
		case GranularityWeek:
			date = anchor.AddDate(0, 0, -7*i)
		case GranularityQuarter:
			date = anchor.AddDate(0, -3*i, 0)
		case GranularityYear:
			date = anchor.AddDate(-i, 0, 0)
		default:
			date = anchor.AddDate(0, -i, 0)
		}

		values := make(map[models.MetricKind]float64, len(metrics))
		for _, kind := range metrics {
			values[kind] = placeholderValue(kind, placeholderPoints-1-i)
		}
		points = append(points, models.TimeSeriesPoint{Date: date.Format("2006-01-02"), Values: values})
	}
	return models.ShapePayload{TimeSeries: &models.TimeSeriesData{Metrics: metrics, Points: points}}
}

// placeholderValue ramps the base amount so the sample chart shows a mild
// upward trend rather than a flat line.
func placeholderValue(kind models.MetricKind, step int) float64 {
	v := placeholderBase[kind] * (0.85 + 0.05*float64(step))
	return math.Round(v*100) / 100
}

func placeholderKPIs(metrics []models.MetricKind) models.ShapePayload {
	kinds := append([]models.MetricKind(nil), metrics...)
	for _, fallback := range []models.MetricKind{models.MetricImpressions, models.MetricClicks, models.MetricCTR, models.MetricCost} {
		if len(kinds) >= 3 {
			break
		}
		if !containsKind(kinds, fallback) {
			kinds = append(kinds, fallback)
		}
	}

	changes := []float64{12.5, -3.2, 8.1, 4.4, -1.8, 6.0, 2.2}
	entries := make([]models.KPIEntry, 0, len(kinds))
	for i, kind := range kinds {
		change := changes[i%len(changes)]
		entries = append(entries, models.KPIEntry{
			Title: kind.DisplayTitle(),
			Value: models.NormalizedValue{
				Raw:         placeholderBase[kind],
				Unit:        kind.Unit(),
				DisplayHint: formatHint(kind, placeholderBase[kind]),
			},
			ChangePercent: &change,
		})
	}
	return models.ShapePayload{KPI: entries}
}

func placeholderComparison(metrics []models.MetricKind) models.ShapePayload {
	names := []string{"Campaign A", "Campaign B", "Campaign C"}
	scales := []float64{1, 0.8, 0.65}

	entities := make([]models.ComparisonEntity, 0, len(names))
	for i, name := range names {
		mvs := make([]models.MetricValue, 0, len(metrics))
		for _, kind := range metrics {
			raw := math.Round(placeholderBase[kind]*scales[i]*100) / 100
			mvs = append(mvs, models.MetricValue{
				Kind:  kind,
				Value: models.NormalizedValue{Raw: raw, Unit: kind.Unit(), DisplayHint: formatHint(kind, raw)},
			})
		}
		entities = append(entities, models.ComparisonEntity{EntityName: name, Metrics: mvs})
	}
	return models.ShapePayload{Comparison: entities}
}

func placeholderDistribution() models.ShapePayload {
	return models.ShapePayload{Distribution: []models.DistributionSlice{
		{Name: "Facebook", Value: 38.5},
		{Name: "Instagram", Value: 26},
		{Name: "Google Ads", Value: 22.5},
		{Name: "TikTok", Value: 13},
	}}
}

// placeholderTable reuses the sample series, one row per date and one
// column per requested metric.
func placeholderTable(metrics []models.MetricKind, gran Granularity, at time.Time) models.ShapePayload {
	series := placeholderSeries(metrics, gran, at).TimeSeries

	headers := make([]string, 0, len(metrics)+1)
	headers = append(headers, "Date")
	for _, kind := range metrics {
		headers = append(headers, kind.DisplayTitle())
	}

	rows := make([][]string, 0, len(series.Points))
	for _, point := range series.Points {
		row := make([]string, 0, len(headers))
		row = append(row, point.Date)
		for _, kind := range metrics {
			row = append(row, formatHint(kind, point.Values[kind]))
		}
		rows = append(rows, row)
	}
	return models.ShapePayload{Table: &models.TableData{Headers: headers, Rows: rows}}
}

func placeholderTreemap() models.ShapePayload {
	return models.ShapePayload{Treemap: []models.TreemapNode{
		{Name: "Search", Value: 5400, Children: []models.TreemapNode{
			{Name: "Brand", Value: 3200},
			{Name: "Generic", Value: 2200},
		}},
		{Name: "Social", Value: 4100, Children: []models.TreemapNode{
			{Name: "Feed", Value: 2600},
			{Name: "Stories", Value: 1500},
		}},
	}}
}

func formatHint(kind models.MetricKind, v float64) string {
	switch kind.Unit() {
	case models.UnitPercent:
		return fmt.Sprintf("%.1f%%", v)
	case models.UnitRatio:
		return fmt.Sprintf("%.1fx", v)
	case models.UnitCurrency:
		return fmt.Sprintf("$%.0f", v)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func containsKind(kinds []models.MetricKind, kind models.MetricKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
