// internal/insights/extract/table_test.go
package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adinsight-workers/internal/models"
)

func TestTableExtractorParsesMarkdownTable(t *testing.T) {
	content := `Daily performance for your top campaign:

| Date | Impressions | Clicks |
|------|-------------|--------|
| 2026-03-01 | 12,400 | 310 |
| 2026-03-02 | 13,100 | 295 |
| 2026-03-03 | 11,800 | 342 |

CTR held above 2% all three days.`

	ext := &tableExtractor{}
	matches := ext.Extract(content)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, models.ShapeTable, m.Shape)
	assert.Equal(t, ConfidenceTable, m.Confidence)
	assert.Equal(t, "Daily performance for your top campaign", m.Title)

	table := m.Payload.Table
	require.NotNil(t, table)
	assert.Equal(t, []string{"Date", "Impressions", "Clicks"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"2026-03-02", "13,100", "295"}, table.Rows[1])

	span := content[m.Span[0]:m.Span[1]]
	assert.True(t, strings.HasPrefix(span, "| Date"))
	assert.True(t, strings.HasSuffix(span, "| 342 |"))
}

func TestTableExtractorFiltersMismatchedRows(t *testing.T) {
	content := `| Campaign | Spend |
|----------|-------|
| Alpha | $2,100 |
| Beta | $1,450 | extra |
| Gamma | $900 |`

	ext := &tableExtractor{}
	matches := ext.Extract(content)
	require.Len(t, matches, 1)

	table := matches[0].Payload.Table
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Alpha", "$2,100"}, table.Rows[0])
	assert.Equal(t, []string{"Gamma", "$900"}, table.Rows[1])
	assert.Equal(t, "Data Table", matches[0].Title)
}

func TestTableExtractorRequiresSeparatorRow(t *testing.T) {
	content := "| A | B |\n| 1 | 2 |\n| 3 | 4 |"

	ext := &tableExtractor{}
	assert.Empty(t, ext.Extract(content))
}

func TestTableExtractorRequiresBodyRow(t *testing.T) {
	content := "| A | B |\n|---|---|"

	ext := &tableExtractor{}
	assert.Empty(t, ext.Extract(content))
}

func TestTableExtractorFindsMultipleTables(t *testing.T) {
	content := `Spend by campaign:

| Campaign | Spend |
|----------|-------|
| Alpha | $2,100 |

Clicks by campaign:

| Campaign | Clicks |
|----------|--------|
| Alpha | 900 |`

	ext := &tableExtractor{}
	matches := ext.Extract(content)
	require.Len(t, matches, 2)
	assert.Equal(t, "Spend by campaign", matches[0].Title)
	assert.Equal(t, "Clicks by campaign", matches[1].Title)
	assert.Equal(t, []string{"Campaign", "Clicks"}, matches[1].Payload.Table.Headers)
}

func TestTableExtractorAlignmentSeparators(t *testing.T) {
	content := "Results:\n| Name | CTR |\n| :--- | ---: |\n| Alpha | 2.4% |"

	ext := &tableExtractor{}
	matches := ext.Extract(content)
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"Alpha", "2.4%"}, matches[0].Payload.Table.Rows[0])
}
