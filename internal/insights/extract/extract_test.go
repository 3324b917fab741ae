// internal/insights/extract/extract_test.go
package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

// ==========================
// Line Scanning Tests
// ==========================

func TestSplitLinesOffsets(t *testing.T) {
	lines := splitLines("a\nbb\n\nccc")
	require.Len(t, lines, 4)
	assert.Equal(t, line{text: "a", start: 0, end: 1}, lines[0])
	assert.Equal(t, line{text: "bb", start: 2, end: 4}, lines[1])
	assert.Equal(t, line{text: "", start: 5, end: 5}, lines[2])
	assert.Equal(t, line{text: "ccc", start: 6, end: 9}, lines[3])
}

func TestSplitLinesEmptyContent(t *testing.T) {
	lines := splitLines("")
	require.Len(t, lines, 1)
	assert.Equal(t, line{text: "", start: 0, end: 0}, lines[0])
}

// ==========================
// Section Bounding Tests
// ==========================

func TestFindSectionsSkipsOneBlankAfterTrigger(t *testing.T) {
	content := "intro\n\nPerformance Summary:\n\n- a\n- b\n\nnext paragraph"
	trigger := regexp.MustCompile(`Performance Summary`)

	sections := findSections(splitLines(content), trigger)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].items, 2)
	assert.Equal(t, "- a", sections[0].items[0].text)
	assert.Equal(t, "- b", sections[0].items[1].text)
}

func TestFindSectionsStopsAtHeading(t *testing.T) {
	content := "Key metrics:\n- a\n# Next Section\n- b"
	trigger := regexp.MustCompile(`Key metrics`)

	sections := findSections(splitLines(content), trigger)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].items, 1)
	assert.Equal(t, "- a", sections[0].items[0].text)
}

// ==========================
// Shared Pattern Tests
// ==========================

func TestMetricPairs(t *testing.T) {
	pairs := metricPairs("Impressions: 10,000, Clicks: 500 and 37 conversions, Mood: 9", vocabulary.Default())
	require.Len(t, pairs, 3)
	assert.Equal(t, models.MetricImpressions, pairs[0].Kind)
	assert.Equal(t, 10000.0, pairs[0].Value.Raw)
	assert.Equal(t, models.MetricClicks, pairs[1].Kind)
	assert.Equal(t, 500.0, pairs[1].Value.Raw)
	assert.Equal(t, models.MetricConversions, pairs[2].Kind)
	assert.Equal(t, 37.0, pairs[2].Value.Raw)
}

func TestMetricPairsFirstMentionWins(t *testing.T) {
	pairs := metricPairs("Clicks: 500 then Clicks: 999", vocabulary.Default())
	require.Len(t, pairs, 1)
	assert.Equal(t, 500.0, pairs[0].Value.Raw)
}

func TestMetricPairsDoesNotRereadClaimedValues(t *testing.T) {
	// "450" belongs to the clicks pair; the prose after it must not turn
	// the same token into a second metric.
	pairs := metricPairs("Clicks: 450 as spend ramped", vocabulary.Default())
	require.Len(t, pairs, 1)
	assert.Equal(t, models.MetricClicks, pairs[0].Kind)
	assert.Equal(t, 450.0, pairs[0].Value.Raw)
}

func TestSectionTitle(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "## 📊 Performance Summary:", expected: "📊 Performance Summary"},
		{raw: "**Key Metrics**:", expected: "Key Metrics"},
		{raw: "**Key Metrics:**", expected: "Key Metrics"},
		{raw: "Weekly Trend:", expected: "Weekly Trend"},
		{raw: "- Platform Split", expected: "Platform Split"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, sectionTitle(tt.raw), "raw: %q", tt.raw)
	}
}

// ==========================
// Registry Tests
// ==========================

func TestExtractorsOrder(t *testing.T) {
	shapes := make([]models.ShapeKind, 0)
	for _, ext := range Extractors(vocabulary.Default()) {
		shapes = append(shapes, ext.Shape())
	}
	assert.Equal(t, []models.ShapeKind{
		models.ShapeKPIDashboard,
		models.ShapeTimeSeries,
		models.ShapeComparison,
		models.ShapeDistribution,
		models.ShapeTimeline,
		models.ShapeTreemap,
		models.ShapeTable,
		models.ShapeCampaignRecord,
	}, shapes)
}

func TestExtractorsTolerateEmptyContent(t *testing.T) {
	for _, ext := range Extractors(vocabulary.Default()) {
		assert.Empty(t, ext.Extract(""), "shape %s", ext.Shape())
	}
}
