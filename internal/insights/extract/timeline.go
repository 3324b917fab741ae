// internal/insights/extract/timeline.go
package extract

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/models"
)

const minTimelineEvents = 2

var (
	timelineTriggerRE = regexp.MustCompile(`(?i)\b(timeline|milestones?|key dates|history|schedule|recent\s+changes)\b`)

	// "2026-03-01: Launched spring creative - budget doubled"
	timelineItemRE = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?\*{0,2}(` + datePattern + `)\*{0,2}\s*[:\-]\s*(.+)$`)
)

// timelineExtractor recognizes dated event listings. Events keep the order
// they appear in the text; date sorting happens in the renderer.
type timelineExtractor struct{}

func (e *timelineExtractor) Shape() models.ShapeKind { return models.ShapeTimeline }

func (e *timelineExtractor) Extract(content string) []CandidateMatch {
	var matches []CandidateMatch
	for _, sec := range findSections(splitLines(content), timelineTriggerRE) {
		events, spanEnd := parseEvents(sec.items)
		if len(events) < minTimelineEvents {
			continue
		}
		matches = append(matches, CandidateMatch{
			Shape:      models.ShapeTimeline,
			Confidence: ConfidenceTimeline,
			Span:       [2]int{sec.trigger.start, spanEnd},
			Title:      sectionTitle(sec.trigger.text),
			Payload:    models.ShapePayload{Timeline: events},
		})
	}
	return matches
}

func parseEvents(items []line) ([]models.TimelineEvent, int) {
	var events []models.TimelineEvent
	spanEnd := 0
	for _, ln := range items {
		m := timelineItemRE.FindStringSubmatch(ln.text)
		if m == nil {
			continue
		}
		event := models.TimelineEvent{
			Date:  strings.TrimSpace(m[1]),
			Title: strings.Trim(strings.TrimSpace(m[2]), "*"),
		}
		if idx := strings.Index(event.Title, " - "); idx > 0 {
			event.Description = strings.TrimSpace(event.Title[idx+3:])
			event.Title = strings.TrimSpace(event.Title[:idx])
		}
		events = append(events, event)
		spanEnd = ln.end
	}
	return events, spanEnd
}
