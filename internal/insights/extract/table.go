// internal/insights/extract/table.go
package extract

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/models"
)

var tableSeparatorRE = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|?\s*$`)

// tableExtractor recognizes well-formed markdown tables: a header row, a
// separator row of dashes, and at least one body row. Body rows whose cell
// count differs from the header are filtered out, not reported as errors.
type tableExtractor struct{}

func (e *tableExtractor) Shape() models.ShapeKind { return models.ShapeTable }

func (e *tableExtractor) Extract(content string) []CandidateMatch {
	lines := splitLines(content)
	var matches []CandidateMatch
	for i := 0; i < len(lines); i++ {
		if !isTableRow(lines[i].text) {
			continue
		}
		if i+1 >= len(lines) || !tableSeparatorRE.MatchString(lines[i+1].text) {
			continue
		}
		headers := splitTableRow(lines[i].text)
		if len(headers) == 0 {
			continue
		}

		var rows [][]string
		spanEnd := 0
		j := i + 2
		for ; j < len(lines) && isTableRow(lines[j].text); j++ {
			cells := splitTableRow(lines[j].text)
			if len(cells) != len(headers) {
				continue
			}
			rows = append(rows, cells)
			spanEnd = lines[j].end
		}
		if len(rows) > 0 {
			matches = append(matches, CandidateMatch{
				Shape:      models.ShapeTable,
				Confidence: ConfidenceTable,
				Span:       [2]int{lines[i].start, spanEnd},
				Title:      tableTitle(lines, i),
				Payload:    models.ShapePayload{Table: &models.TableData{Headers: headers, Rows: rows}},
			})
		}
		i = j - 1
	}
	return matches
}

func isTableRow(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2
}

func splitTableRow(text string) []string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// tableTitle looks upward from the header row for the nearest non-blank
// line of plain text. Another table directly above yields the default.
func tableTitle(lines []line, headerIdx int) string {
	for k := headerIdx - 1; k >= 0; k-- {
		if isBlank(lines[k].text) {
			continue
		}
		if isTableRow(lines[k].text) || tableSeparatorRE.MatchString(lines[k].text) {
			break
		}
		return sectionTitle(lines[k].text)
	}
	return "Data Table"
}
