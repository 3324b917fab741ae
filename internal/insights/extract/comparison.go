// internal/insights/extract/comparison.go
package extract

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

const minComparisonEntities = 2

// Entity headers look like "**Campaign Alpha (ID: 12345678)**". Metrics may
// sit inline after the header or on the lines below it, up to the next
// blank line.
var comparisonHeaderRE = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*|\d+[.)]\s*|#{1,6}\s*)?\*{0,2}([A-Za-z0-9][^(:\n]*?)\*{0,2}\s*\(\s*id:?\s*(\d+)\s*\)`)

// comparisonExtractor recognizes side-by-side campaign blocks. It only
// engages when the text mentions both "Campaign" and "ID" literally, which
// is how the analysis templates introduce per-campaign sections.
type comparisonExtractor struct {
	vocab vocabulary.Vocabulary
}

func (e *comparisonExtractor) Shape() models.ShapeKind { return models.ShapeComparison }

func (e *comparisonExtractor) Extract(content string) []CandidateMatch {
	if !strings.Contains(content, "Campaign") || !strings.Contains(content, "ID") {
		return nil
	}

	var (
		entities []models.ComparisonEntity
		extents  [][2]int
		current  = -1
	)
	for _, ln := range splitLines(content) {
		if m := comparisonHeaderRE.FindStringSubmatchIndex(ln.text); m != nil {
			name := cleanLabel(ln.text[m[2]:m[3]])
			entities = append(entities, models.ComparisonEntity{
				EntityName: name,
				Metrics:    metricPairs(ln.text[m[1]:], e.vocab),
			})
			extents = append(extents, [2]int{ln.start, ln.end})
			current = len(entities) - 1
			continue
		}
		if isBlank(ln.text) {
			current = -1
			continue
		}
		if current < 0 {
			continue
		}
		pairs := metricPairs(ln.text, e.vocab)
		if len(pairs) == 0 {
			continue
		}
		entities[current].Metrics = mergeMetrics(entities[current].Metrics, pairs)
		extents[current][1] = ln.end
	}

	qualified, span := qualifyEntities(entities, extents)
	if len(qualified) < minComparisonEntities {
		return nil
	}
	return []CandidateMatch{{
		Shape:      models.ShapeComparison,
		Confidence: ConfidenceComparison,
		Span:       span,
		Title:      "Campaign Comparison",
		Payload:    models.ShapePayload{Comparison: qualified},
	}}
}

// qualifyEntities keeps entities that parsed at least one metric, first
// occurrence per name, and returns the byte extent covering the survivors.
func qualifyEntities(entities []models.ComparisonEntity, extents [][2]int) ([]models.ComparisonEntity, [2]int) {
	var (
		qualified []models.ComparisonEntity
		span      [2]int
		seen      = make(map[string]bool)
	)
	for i, entity := range entities {
		if len(entity.Metrics) == 0 || seen[entity.EntityName] {
			continue
		}
		seen[entity.EntityName] = true
		if len(qualified) == 0 {
			span = extents[i]
		} else {
			if extents[i][0] < span[0] {
				span[0] = extents[i][0]
			}
			if extents[i][1] > span[1] {
				span[1] = extents[i][1]
			}
		}
		qualified = append(qualified, entity)
	}
	return qualified, span
}
