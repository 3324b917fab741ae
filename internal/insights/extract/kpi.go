// internal/insights/extract/kpi.go
package extract

import (
	"regexp"
	"strconv"

	"adinsight-workers/internal/insights/numeric"
	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

const minKPIEntries = 3

var (
	kpiTriggerRE = regexp.MustCompile(`(?i)\b(performance\s+(summary|overview)|key\s+metrics|kpis?|(overall|campaign)\s+performance|account\s+summary)\b`)

	// One KPI line: optional bullet and emphasis, a label, a value token and
	// an optional parenthesized change percentage.
	kpiItemRE = regexp.MustCompile(`^\s*(?:[-*•]\s*)?\*{0,2}([^:*]+?)\*{0,2}\s*:\s*\*{0,2}(\$?-?\d[\d,]*(?:\.\d+)?%?[xX]?)\*{0,2}(?:\s*\(([+-]?\d+(?:\.\d+)?)%\))?`)
)

// kpiExtractor recognizes summary sections made of "Metric: value" lines,
// such as the performance overview block most analyses open with.
type kpiExtractor struct {
	vocab vocabulary.Vocabulary
}

func (e *kpiExtractor) Shape() models.ShapeKind { return models.ShapeKPIDashboard }

func (e *kpiExtractor) Extract(content string) []CandidateMatch {
	var matches []CandidateMatch
	for _, sec := range findSections(splitLines(content), kpiTriggerRE) {
		entries, spanEnd := e.parseEntries(sec.items)
		if len(entries) < minKPIEntries {
			continue
		}
		matches = append(matches, CandidateMatch{
			Shape:      models.ShapeKPIDashboard,
			Confidence: ConfidenceKPI,
			Span:       [2]int{sec.trigger.start, spanEnd},
			Title:      sectionTitle(sec.trigger.text),
			Payload:    models.ShapePayload{KPI: entries},
		})
	}
	return matches
}

func (e *kpiExtractor) parseEntries(items []line) ([]models.KPIEntry, int) {
	var entries []models.KPIEntry
	spanEnd := 0
	for _, ln := range items {
		m := kpiItemRE.FindStringSubmatch(ln.text)
		if m == nil {
			continue
		}
		label := cleanLabel(m[1])
		kind, ok := e.vocab.Resolve(label)
		if !ok {
			continue
		}
		value, err := numeric.Normalize(m[2], kind)
		if err != nil {
			continue
		}
		entry := models.KPIEntry{Title: label, Value: value}
		if m[3] != "" {
			if change, err := strconv.ParseFloat(m[3], 64); err == nil {
				entry.ChangePercent = &change
			}
		}
		entries = append(entries, entry)
		spanEnd = ln.end
	}
	return entries, spanEnd
}
