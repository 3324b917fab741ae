// internal/insights/extract/campaign_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

func TestCampaignRecordExtractorParsesInlineMetrics(t *testing.T) {
	content := "Campaign ID: 12345678 has Impressions: 10,000, Clicks: 500, CTR: 5.0%"

	ext := &campaignRecordExtractor{vocab: vocabulary.Default()}
	matches := ext.Extract(content)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, models.ShapeCampaignRecord, m.Shape)
	assert.Equal(t, ConfidenceCampaignRecord, m.Confidence)
	assert.Equal(t, [2]int{0, len(content)}, m.Span)
	assert.Equal(t, "Campaign Details", m.Title)

	records := m.Payload.CampaignRecords
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "12345678", record.ID)
	assert.Empty(t, record.Name)
	require.Len(t, record.Metrics, 3)
	assert.Equal(t, models.MetricImpressions, record.Metrics[0].Kind)
	assert.Equal(t, 10000.0, record.Metrics[0].Value.Raw)
	assert.Equal(t, models.MetricClicks, record.Metrics[1].Kind)
	assert.Equal(t, 500.0, record.Metrics[1].Value.Raw)
	assert.Equal(t, models.MetricCTR, record.Metrics[2].Kind)
	assert.Equal(t, 5.0, record.Metrics[2].Value.Raw)
	assert.Equal(t, models.UnitPercent, record.Metrics[2].Value.Unit)
}

func TestCampaignRecordExtractorCapturesName(t *testing.T) {
	content := `Campaign "Summer Sale" (ID: 87654321) is your strongest performer, with Conversions: 140 and ROAS: 4.2x so far this month.`

	ext := &campaignRecordExtractor{vocab: vocabulary.Default()}
	matches := ext.Extract(content)
	require.Len(t, matches, 1)

	records := matches[0].Payload.CampaignRecords
	require.Len(t, records, 1)
	assert.Equal(t, "87654321", records[0].ID)
	assert.Equal(t, "Summer Sale", records[0].Name)
	require.Len(t, records[0].Metrics, 2)
	assert.Equal(t, models.MetricConversions, records[0].Metrics[0].Kind)
	assert.Equal(t, models.MetricROAS, records[0].Metrics[1].Kind)
	assert.Equal(t, 4.2, records[0].Metrics[1].Value.Raw)
	assert.Equal(t, models.UnitRatio, records[0].Metrics[1].Value.Unit)
}

func TestCampaignRecordExtractorDeduplicatesIDs(t *testing.T) {
	content := "Campaign 11223344 drew Impressions: 9,000 early on. Later, Campaign 11223344 added Clicks: 450 as spend ramped."

	ext := &campaignRecordExtractor{vocab: vocabulary.Default()}
	matches := ext.Extract(content)
	require.Len(t, matches, 1)

	records := matches[0].Payload.CampaignRecords
	require.Len(t, records, 1)
	assert.Equal(t, "11223344", records[0].ID)
	require.Len(t, records[0].Metrics, 2)
	assert.Equal(t, models.MetricImpressions, records[0].Metrics[0].Kind)
	assert.Equal(t, models.MetricClicks, records[0].Metrics[1].Kind)
}

func TestCampaignRecordExtractorRequiresNearbyMetrics(t *testing.T) {
	content := "Campaign 99887766 is paused right now and holds no fresh numbers."

	ext := &campaignRecordExtractor{vocab: vocabulary.Default()}
	assert.Empty(t, ext.Extract(content))
}

func TestCampaignRecordExtractorIgnoresShortIDs(t *testing.T) {
	content := "Campaign 1234567 logged Impressions: 2,000 yesterday."

	ext := &campaignRecordExtractor{vocab: vocabulary.Default()}
	assert.Empty(t, ext.Extract(content))
}

func TestCampaignRecordExtractorMultipleCampaigns(t *testing.T) {
	content := "Campaign 11112222 finished with Impressions: 48,000. Campaign 33334444 finished with Impressions: 36,500."

	ext := &campaignRecordExtractor{vocab: vocabulary.Default()}
	matches := ext.Extract(content)
	require.Len(t, matches, 1)

	records := matches[0].Payload.CampaignRecords
	require.Len(t, records, 2)
	assert.Equal(t, "11112222", records[0].ID)
	assert.Equal(t, "33334444", records[1].ID)
}
