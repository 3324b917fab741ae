// internal/insights/extract/treemap.go
package extract

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/insights/numeric"
	"adinsight-workers/internal/models"
)

const minTreemapNodes = 3

var (
	treemapTriggerRE = regexp.MustCompile(`(?i)\b(hierarchy|hierarchical|treemap|tree map|nested breakdown|structure)\b`)

	// Indented bullet with a value. Indent depth decides nesting.
	treemapItemRE = regexp.MustCompile(`^(\s*)[-*•]\s*\*{0,2}([^:*]+?)\*{0,2}\s*[:\-]\s*\$?(\d[\d,]*(?:\.\d+)?)\s*$`)
)

// treemapExtractor recognizes indented bullet hierarchies with a numeric
// value per node, such as budget broken down by channel and then campaign.
type treemapExtractor struct{}

func (e *treemapExtractor) Shape() models.ShapeKind { return models.ShapeTreemap }

func (e *treemapExtractor) Extract(content string) []CandidateMatch {
	var matches []CandidateMatch
	for _, sec := range findSections(splitLines(content), treemapTriggerRE) {
		roots, total, spanEnd := parseNodes(sec.items)
		if total < minTreemapNodes {
			continue
		}
		matches = append(matches, CandidateMatch{
			Shape:      models.ShapeTreemap,
			Confidence: ConfidenceTreemap,
			Span:       [2]int{sec.trigger.start, spanEnd},
			Title:      sectionTitle(sec.trigger.text),
			Payload:    models.ShapePayload{Treemap: roots},
		})
	}
	return matches
}

// parseNodes builds the node tree from bullet indentation. A frame stays on
// the stack only while parsing its descendants, so appends to a sibling
// list never happen while a pointer into that list is still live.
func parseNodes(items []line) ([]models.TreemapNode, int, int) {
	type frame struct {
		indent int
		node   *models.TreemapNode
	}
	var (
		roots   []models.TreemapNode
		stack   []frame
		total   int
		spanEnd int
	)
	for _, ln := range items {
		m := treemapItemRE.FindStringSubmatch(ln.text)
		if m == nil {
			continue
		}
		value, err := numeric.Parse(m[3])
		if err != nil {
			continue
		}
		indent := len(strings.ReplaceAll(m[1], "\t", "  "))
		node := models.TreemapNode{Name: cleanLabel(m[2]), Value: value}

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
			stack = append(stack, frame{indent: indent, node: &roots[len(roots)-1]})
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
			stack = append(stack, frame{indent: indent, node: &parent.Children[len(parent.Children)-1]})
		}
		total++
		spanEnd = ln.end
	}
	return roots, total, spanEnd
}
