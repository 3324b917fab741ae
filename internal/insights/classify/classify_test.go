// internal/insights/classify/classify_test.go
package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adinsight-workers/internal/models"
)

func assistantMessage(content string) models.RawMessage {
	return models.RawMessage{
		Role:      models.RoleAssistant,
		Content:   content,
		CreatedAt: time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC),
	}
}

// ==========================
// Gating Tests
// ==========================

func TestClassifyShortMessagesReturnNothing(t *testing.T) {
	content := "CTR 5.0%, Clicks 500, ROAS 3.2x today."

	descs := New().Classify(assistantMessage(content))
	assert.Empty(t, descs)
}

func TestClassifyUserProseReturnsNothing(t *testing.T) {
	content := strings.Repeat("The campaigns are performing well this month. ", 4)
	msg := models.RawMessage{Role: models.RoleUser, Content: content}

	descs := New().Classify(msg)
	assert.Empty(t, descs)
}

// ==========================
// Direct Request Tests
// ==========================

func TestClassifyDirectRequestShortCircuits(t *testing.T) {
	msg := models.RawMessage{
		Role:      models.RoleUser,
		Content:   "Give me a pie chart of campaign spend",
		CreatedAt: time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC),
	}

	descs := New().Classify(msg)
	require.Len(t, descs, 1)
	assert.Equal(t, models.ShapeDistribution, descs[0].Shape)
	assert.NotEmpty(t, descs[0].Data.Distribution)
	assert.Equal(t, msg.Content, descs[0].OriginalText)
}

// ==========================
// Extraction Tests
// ==========================

func TestClassifyMarkdownTable(t *testing.T) {
	content := `Here is the daily performance detail you asked about, covering the first three days of March:

| Date | Impressions | Clicks |
|------|-------------|--------|
| 2026-03-01 | 12,400 | 310 |
| 2026-03-02 | 13,100 | 295 |
| 2026-03-03 | 11,800 | 342 |`

	descs := New().Classify(assistantMessage(content))
	require.Len(t, descs, 1)

	desc := descs[0]
	assert.Equal(t, models.ShapeTable, desc.Shape)
	require.NotNil(t, desc.Data.Table)
	assert.Len(t, desc.Data.Table.Headers, 3)
	assert.Len(t, desc.Data.Table.Rows, 3)
	assert.True(t, strings.HasPrefix(desc.OriginalText, "| Date"))
}

func TestClassifyCampaignRecordClaimsWholeMessage(t *testing.T) {
	content := "Campaign ID: 12345678 has Impressions: 10,000, Clicks: 500, CTR: 5.0% during the current reporting window."

	descs := New().Classify(assistantMessage(content))
	require.Len(t, descs, 1)

	desc := descs[0]
	assert.Equal(t, models.ShapeCampaignRecord, desc.Shape)
	assert.Equal(t, content, desc.OriginalText)
	require.Len(t, desc.Data.CampaignRecords, 1)
	assert.Equal(t, "12345678", desc.Data.CampaignRecords[0].ID)
	assert.Len(t, desc.Data.CampaignRecords[0].Metrics, 3)
}

func TestClassifyMultipleSectionsKeepDocumentOrder(t *testing.T) {
	content := `## Performance Summary

- Impressions: 125,000
- Clicks: 3,400
- CTR: 2.72%

Daily detail below:

| Date | Clicks |
|------|--------|
| 2026-03-01 | 310 |
| 2026-03-02 | 295 |`

	descs := New().Classify(assistantMessage(content))
	require.Len(t, descs, 2)
	assert.Equal(t, models.ShapeKPIDashboard, descs[0].Shape)
	assert.Equal(t, models.ShapeTable, descs[1].Shape)
	assert.Less(t, strings.Index(content, descs[0].OriginalText), strings.Index(content, descs[1].OriginalText))
}

func TestClassifyTieBreaksByEmissionOrder(t *testing.T) {
	content := `**Campaign Alpha (ID: 111222)**
- Impressions: 48,000

Performance summary:
- Impressions: 125,000
- Clicks: 3,400
- CTR: 2.72%

**Campaign Beta (ID: 333444)**
- Impressions: 36,500`

	descs := New().Classify(assistantMessage(content))
	require.Len(t, descs, 1)
	assert.Equal(t, models.ShapeKPIDashboard, descs[0].Shape)
	assert.NotContains(t, descs[0].OriginalText, "Campaign Alpha")
}

// ==========================
// Contract Tests
// ==========================

func TestClassifyIsIdempotent(t *testing.T) {
	content := `## Performance Summary

- Impressions: 125,000
- Clicks: 3,400
- CTR: 2.72%

Spend held flat week over week while conversions improved slightly.`

	c := New()
	msg := assistantMessage(content)
	first := c.Classify(msg)
	second := c.Classify(msg)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
}

func TestClassifyOriginalTextMatchesContentSlice(t *testing.T) {
	content := `## Performance Summary

- Impressions: 125,000
- Clicks: 3,400
- Spend: $4,580

That is a healthy baseline for scaling into the holiday period.`

	descs := New().Classify(assistantMessage(content))
	require.Len(t, descs, 1)
	assert.Contains(t, content, descs[0].OriginalText)
	assert.True(t, strings.HasPrefix(descs[0].OriginalText, "## Performance Summary"))
	assert.True(t, strings.HasSuffix(descs[0].OriginalText, "Spend: $4,580"))
}

func TestClassifyNeverReturnsNil(t *testing.T) {
	descs := New().Classify(assistantMessage("short"))
	assert.NotNil(t, descs)
	assert.Empty(t, descs)
}

func TestClassifyDescriptorSpansDoNotOverlap(t *testing.T) {
	content := `## Performance Summary

- Impressions: 125,000
- Clicks: 3,400
- CTR: 2.72%

Spend split by platform:

- Facebook: 45%
- Instagram: 30%
- TikTok: 25%

| Date | Clicks |
|------|--------|
| 2026-03-01 | 310 |
| 2026-03-02 | 295 |`

	descs := New().Classify(assistantMessage(content))
	require.GreaterOrEqual(t, len(descs), 2)

	used := make([]int, 0, len(descs)*2)
	for _, desc := range descs {
		start := strings.Index(content, desc.OriginalText)
		require.GreaterOrEqual(t, start, 0)
		end := start + len(desc.OriginalText)
		for i := 0; i+1 < len(used); i += 2 {
			overlap := used[i] <= end && start <= used[i+1]
			assert.False(t, overlap, "descriptor spans overlap")
		}
		used = append(used, start, end)
	}
}
