// internal/insights/extract/extract.go
package extract

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/insights/numeric"
	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

// Fixed confidence per shape. Confidence is a static priority weight that
// reflects how unambiguous the shape's trigger pattern is, used only to
// break span conflicts during overlap resolution.
const (
	ConfidenceKPI            = 0.80
	ConfidenceTimeSeries     = 0.75
	ConfidenceComparison     = 0.80
	ConfidenceDistribution   = 0.75
	ConfidenceTimeline       = 0.80
	ConfidenceTreemap        = 0.75
	ConfidenceTable          = 0.90
	ConfidenceCampaignRecord = 0.90
)

// CandidateMatch is one region of message content that an extractor claims
// as visualizable, before overlap resolution. Span is a half-open byte
// range [start, end) into the content, with Span[0] < Span[1] <= len(content).
type CandidateMatch struct {
	Shape       models.ShapeKind
	Confidence  float64
	Span        [2]int
	Title       string
	Description string
	Payload     models.ShapePayload
}

// Extractor scans full message content for one data shape. Implementations
// only read the content, never panic, and yield no candidate for any
// subsection they cannot parse.
type Extractor interface {
	Shape() models.ShapeKind
	Extract(content string) []CandidateMatch
}

// Extractors returns the full extractor set. The slice order is the
// emission order, which overlap resolution keeps as the tie-break between
// candidates of equal confidence.
func Extractors(vocab vocabulary.Vocabulary) []Extractor {
	return []Extractor{
		&kpiExtractor{vocab: vocab},
		&timeSeriesExtractor{vocab: vocab},
		&comparisonExtractor{vocab: vocab},
		&distributionExtractor{},
		&timelineExtractor{},
		&treemapExtractor{},
		&tableExtractor{},
		&campaignRecordExtractor{vocab: vocab},
	}
}

// ==========================
// Line and Section Scanning
// ==========================

// line is one physical line of the content with its byte extent. The
// trailing newline is excluded from the extent.
type line struct {
	text  string
	start int
	end   int
}

func splitLines(content string) []line {
	lines := make([]line, 0, strings.Count(content, "\n")+1)
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, line{text: content[start:i], start: start, end: i})
			start = i + 1
		}
	}
	lines = append(lines, line{text: content[start:], start: start, end: len(content)})
	return lines
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func isHeading(s string) bool { return strings.HasPrefix(strings.TrimSpace(s), "#") }

// section is a run of consecutive lines introduced by a trigger line. The
// item block may be separated from its trigger by a single blank line and
// ends at the next blank line or markdown heading.
type section struct {
	trigger line
	items   []line
}

func findSections(lines []line, trigger *regexp.Regexp) []section {
	var sections []section
	for i, ln := range lines {
		if !trigger.MatchString(ln.text) {
			continue
		}
		sec := section{trigger: ln}
		j := i + 1
		if j < len(lines) && isBlank(lines[j].text) {
			j++
		}
		for ; j < len(lines); j++ {
			if isBlank(lines[j].text) || isHeading(lines[j].text) {
				break
			}
			sec.items = append(sec.items, lines[j])
		}
		sections = append(sections, sec)
	}
	return sections
}

// sectionTitle cleans a trigger line into a display title: markdown heading
// markers, bullet markers, emphasis asterisks and a trailing colon are
// stripped, emoji and inner punctuation are kept.
func sectionTitle(triggerText string) string {
	title := strings.TrimSpace(triggerText)
	title = strings.TrimLeft(title, "#")
	title = strings.TrimSpace(title)
	title = strings.TrimLeft(title, "-*•")
	title = strings.TrimSpace(title)
	title = strings.TrimSuffix(title, ":")
	title = strings.Trim(title, "*")
	title = strings.TrimSuffix(strings.TrimSpace(title), ":")
	return strings.TrimSpace(title)
}

// ==========================
// Shared Item Patterns
// ==========================

// datePattern recognizes ISO, US numeric, and month-name date tokens. Kept
// as a string so extractors can embed it in larger patterns.
const datePattern = `\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}(?:/\d{2,4})?|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:,?\s*\d{4})?`

var (
	// "Impressions: 10,000" with optional bullet and markdown emphasis.
	labelValueRE = regexp.MustCompile(`([A-Za-z][A-Za-z& .\-]{0,40}?)\*{0,2}\s*[:=]\s*\*{0,2}(\$?-?\d[\d,]*(?:\.\d+)?%?[xX]?)`)

	// "10,000 impressions" with the value leading.
	valueLabelRE = regexp.MustCompile(`(\$?\d[\d,]*(?:\.\d+)?%?[xX]?)\s+([A-Za-z][A-Za-z\-]{1,30}(?:\s+[A-Za-z][A-Za-z\-]{1,30})?)`)

	dateRE = regexp.MustCompile(`(?i)(` + datePattern + `)`)
)

// cleanLabel strips bullet markers, markdown emphasis and surrounding
// whitespace from a captured label.
func cleanLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimLeft(label, "-*•")
	label = strings.Trim(label, "*")
	return strings.TrimSpace(label)
}

// metricPairs pulls every "label: value" and "value label" pair out of text
// whose label resolves through the vocabulary. Pairs with unknown labels or
// unparseable values are dropped. The first mention of a kind wins; later
// mentions never overwrite it. A value token that already belongs to a
// "label: value" construct is never re-read against the prose that follows
// it, so "Clicks: 450 as spend ramped" stays one clicks pair.
func metricPairs(text string, vocab vocabulary.Vocabulary) []models.MetricValue {
	var out []models.MetricValue
	seen := make(map[models.MetricKind]bool)

	labelMatches := labelValueRE.FindAllStringSubmatchIndex(text, -1)
	claimed := make([][2]int, 0, len(labelMatches))
	for _, m := range labelMatches {
		claimed = append(claimed, [2]int{m[0], m[1]})
	}

	for _, m := range labelMatches {
		kind, ok := vocab.Resolve(cleanLabel(text[m[2]:m[3]]))
		if !ok || seen[kind] {
			continue
		}
		value, err := numeric.Normalize(text[m[4]:m[5]], kind)
		if err != nil {
			continue
		}
		out = append(out, models.MetricValue{Kind: kind, Value: value})
		seen[kind] = true
	}
	for _, m := range valueLabelRE.FindAllStringSubmatchIndex(text, -1) {
		if insideClaimed(claimed, m[2], m[3]) {
			continue
		}
		kind, ok := vocab.Resolve(cleanLabel(text[m[4]:m[5]]))
		if !ok || seen[kind] {
			continue
		}
		value, err := numeric.Normalize(text[m[2]:m[3]], kind)
		if err != nil {
			continue
		}
		out = append(out, models.MetricValue{Kind: kind, Value: value})
		seen[kind] = true
	}
	return out
}

func insideClaimed(claimed [][2]int, start, end int) bool {
	for _, c := range claimed {
		if start < c[1] && c[0] < end {
			return true
		}
	}
	return false
}

// mergeMetrics appends pairs whose kind is not already present in existing.
func mergeMetrics(existing, pairs []models.MetricValue) []models.MetricValue {
	seen := make(map[models.MetricKind]bool, len(existing))
	for _, mv := range existing {
		seen[mv.Kind] = true
	}
	for _, mv := range pairs {
		if seen[mv.Kind] {
			continue
		}
		existing = append(existing, mv)
		seen[mv.Kind] = true
	}
	return existing
}
