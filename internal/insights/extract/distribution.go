// internal/insights/extract/distribution.go
package extract

import (
	"regexp"
	"strconv"

	"adinsight-workers/internal/models"
)

const minDistributionSlices = 3

var (
	distributionTriggerRE = regexp.MustCompile(`(?i)\b(distribution|breakdown|split|share|allocation|by (platform|channel|device))\b`)

	// "Facebook: 45%" and "Facebook (45%)" slice forms.
	distColonItemRE = regexp.MustCompile(`^\s*(?:[-*•]\s*)?\*{0,2}([^:*(]+?)\*{0,2}\s*[:\-]\s*\*{0,2}(\d+(?:\.\d+)?)\s*%`)
	distParenItemRE = regexp.MustCompile(`^\s*(?:[-*•]\s*)?\*{0,2}([^:*(]+?)\*{0,2}\s*\(\s*(\d+(?:\.\d+)?)\s*%\s*\)`)
)

// distributionExtractor recognizes percentage-share listings, typically a
// spend or impression split across platforms. Slice names are free text and
// do not go through the metric vocabulary; values are percentage points and
// are not required to sum to 100.
type distributionExtractor struct{}

func (e *distributionExtractor) Shape() models.ShapeKind { return models.ShapeDistribution }

func (e *distributionExtractor) Extract(content string) []CandidateMatch {
	var matches []CandidateMatch
	for _, sec := range findSections(splitLines(content), distributionTriggerRE) {
		slices, spanEnd := parseSlices(sec.items)
		if len(slices) < minDistributionSlices {
			continue
		}
		matches = append(matches, CandidateMatch{
			Shape:      models.ShapeDistribution,
			Confidence: ConfidenceDistribution,
			Span:       [2]int{sec.trigger.start, spanEnd},
			Title:      sectionTitle(sec.trigger.text),
			Payload:    models.ShapePayload{Distribution: slices},
		})
	}
	return matches
}

func parseSlices(items []line) ([]models.DistributionSlice, int) {
	var slices []models.DistributionSlice
	spanEnd := 0
	for _, ln := range items {
		m := distColonItemRE.FindStringSubmatch(ln.text)
		if m == nil {
			m = distParenItemRE.FindStringSubmatch(ln.text)
		}
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		slices = append(slices, models.DistributionSlice{Name: cleanLabel(m[1]), Value: value})
		spanEnd = ln.end
	}
	return slices, spanEnd
}
