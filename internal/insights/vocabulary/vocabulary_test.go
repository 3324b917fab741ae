// internal/insights/vocabulary/vocabulary_test.go
package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"adinsight-workers/internal/models"
)

// ==========================
// Resolve Tests
// ==========================

func TestResolve(t *testing.T) {
	vocab := Default()

	tests := []struct {
		name     string
		label    string
		expected models.MetricKind
		found    bool
	}{
		{
			name:     "exact lowercase",
			label:    "impressions",
			expected: models.MetricImpressions,
			found:    true,
		},
		{
			name:     "exact mixed case",
			label:    "CTR",
			expected: models.MetricCTR,
			found:    true,
		},
		{
			name:     "full synonym",
			label:    "Click-Through Rate",
			expected: models.MetricCTR,
			found:    true,
		},
		{
			name:     "substring within longer label",
			label:    "Total Impressions",
			expected: models.MetricImpressions,
			found:    true,
		},
		{
			name:     "emoji label",
			label:    "👁️ Impressions",
			expected: models.MetricImpressions,
			found:    true,
		},
		{
			name:     "spend resolves to cost",
			label:    "Ad Spend",
			expected: models.MetricCost,
			found:    true,
		},
		{
			name:     "revenue resolves to sales",
			label:    "Revenue",
			expected: models.MetricSales,
			found:    true,
		},
		{
			name:     "return on ad spend prefers roas over cost",
			label:    "Return on Ad Spend",
			expected: models.MetricROAS,
			found:    true,
		},
		{
			name:  "unknown label",
			label: "Bounce Rate",
			found: false,
		},
		{
			name:  "empty label",
			label: "   ",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := vocab.Resolve(tt.label)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, kind)
			}
		})
	}
}

func TestResolveSubstringPrefersLongestSynonym(t *testing.T) {
	vocab := Default()

	// "Click-Through Rate (CTR)" contains both the ctr synonyms and no
	// clicks synonym; it must land on ctr, not clicks.
	kind, ok := vocab.Resolve("Click-Through Rate (CTR)")
	assert.True(t, ok)
	assert.Equal(t, models.MetricCTR, kind)
}

func TestResolveWithCustomTable(t *testing.T) {
	vocab := New(map[string]models.MetricKind{
		"eyeballs": models.MetricImpressions,
	})

	kind, ok := vocab.Resolve("Eyeballs")
	assert.True(t, ok)
	assert.Equal(t, models.MetricImpressions, kind)

	_, ok = vocab.Resolve("impressions")
	assert.False(t, ok, "default synonyms must not leak into custom tables")
}

// ==========================
// FindAll Tests
// ==========================

func TestFindAll(t *testing.T) {
	vocab := Default()

	tests := []struct {
		name     string
		text     string
		expected []models.MetricKind
	}{
		{
			name:     "single mention",
			text:     "Give me a pie chart of campaign spend",
			expected: []models.MetricKind{models.MetricCost},
		},
		{
			name:     "ordered by first occurrence",
			text:     "Plot clicks and impressions over time",
			expected: []models.MetricKind{models.MetricClicks, models.MetricImpressions},
		},
		{
			name:     "duplicates collapse",
			text:     "Compare cost against cost per platform",
			expected: []models.MetricKind{models.MetricCost},
		},
		{
			name:     "no mentions",
			text:     "How is everything going?",
			expected: []models.MetricKind{},
		},
		{
			name:     "word boundaries respected",
			text:     "The conversation sailed along",
			expected: []models.MetricKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds := vocab.FindAll(tt.text)
			assert.Equal(t, tt.expected, kinds)
		})
	}
}

func BenchmarkResolve(b *testing.B) {
	vocab := Default()
	for i := 0; i < b.N; i++ {
		vocab.Resolve("Click-Through Rate")
	}
}
