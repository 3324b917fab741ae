// internal/insights/vocabulary/vocabulary.go
package vocabulary

import (
	"regexp"
	"sort"
	"strings"

	"adinsight-workers/internal/models"
)

// entry binds one synonym to its canonical metric. Synonyms are stored
// lowercase; wordRE is nil for synonyms that contain non-word characters
// (emoji), which match by plain containment instead.
type entry struct {
	synonym string
	kind    models.MetricKind
	wordRE  *regexp.Regexp
}

// Vocabulary maps textual metric labels to canonical metric kinds. All
// extractors resolve labels through a Vocabulary; none hardcodes metric
// names beyond its section trigger phrase. The zero value is unusable;
// construct with Default or New.
type Vocabulary struct {
	exact   map[string]models.MetricKind
	ordered []entry
}

// defaultSynonyms is the synonym table observed in the product's analysis
// templates. Longer synonyms win over shorter ones during substring
// resolution, so "click-through rate" resolves before "clicks" could.
var defaultSynonyms = map[string]models.MetricKind{
	"impressions":        models.MetricImpressions,
	"impr":               models.MetricImpressions,
	"views":              models.MetricImpressions,
	"👁️":                 models.MetricImpressions,
	"👁":                  models.MetricImpressions,
	"clicks":             models.MetricClicks,
	"cost":               models.MetricCost,
	"spend":              models.MetricCost,
	"ad spend":           models.MetricCost,
	"💰":                  models.MetricCost,
	"conversions":        models.MetricConversions,
	"conv":               models.MetricConversions,
	"purchases":          models.MetricConversions,
	"orders":             models.MetricConversions,
	"ctr":                models.MetricCTR,
	"click-through rate": models.MetricCTR,
	"clickthrough rate":  models.MetricCTR,
	"roas":               models.MetricROAS,
	"return on ad spend": models.MetricROAS,
	"sales":              models.MetricSales,
	"revenue":            models.MetricSales,
}

// Default returns the vocabulary used in production.
func Default() Vocabulary {
	return New(defaultSynonyms)
}

// New builds a vocabulary from an explicit synonym table. Tests substitute
// reduced tables to exercise extractors in isolation.
func New(synonyms map[string]models.MetricKind) Vocabulary {
	v := Vocabulary{
		exact:   make(map[string]models.MetricKind, len(synonyms)),
		ordered: make([]entry, 0, len(synonyms)),
	}
	for syn, kind := range synonyms {
		lower := strings.ToLower(syn)
		v.exact[lower] = kind
		e := entry{synonym: lower, kind: kind}
		if isWordSynonym(lower) {
			e.wordRE = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(lower) + `\b`)
		}
		v.ordered = append(v.ordered, e)
	}
	// Longest first; equal lengths alphabetical so resolution order is
	// deterministic regardless of map iteration.
	sort.Slice(v.ordered, func(i, j int) bool {
		if len(v.ordered[i].synonym) != len(v.ordered[j].synonym) {
			return len(v.ordered[i].synonym) > len(v.ordered[j].synonym)
		}
		return v.ordered[i].synonym < v.ordered[j].synonym
	})
	return v
}

func isWordSynonym(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}

// Resolve maps a metric label to its canonical kind. Matching is
// case-insensitive: exact first, then substring containment checked
// longest-synonym-first. Unrecognized labels return false and the caller
// drops the item.
func (v Vocabulary) Resolve(label string) (models.MetricKind, bool) {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return "", false
	}
	if kind, ok := v.exact[lower]; ok {
		return kind, true
	}
	for _, e := range v.ordered {
		if strings.Contains(lower, e.synonym) {
			return e.kind, true
		}
	}
	return "", false
}

// FindAll scans free text for metric mentions and returns the distinct
// kinds ordered by first occurrence. Word synonyms match on word
// boundaries so "conversions" in prose does not fire on a stray "conv".
func (v Vocabulary) FindAll(text string) []models.MetricKind {
	lower := strings.ToLower(text)
	firstAt := make(map[models.MetricKind]int)
	for _, e := range v.ordered {
		pos := -1
		if e.wordRE != nil {
			if loc := e.wordRE.FindStringIndex(lower); loc != nil {
				pos = loc[0]
			}
		} else {
			pos = strings.Index(lower, e.synonym)
		}
		if pos < 0 {
			continue
		}
		if prev, ok := firstAt[e.kind]; !ok || pos < prev {
			firstAt[e.kind] = pos
		}
	}
	kinds := make([]models.MetricKind, 0, len(firstAt))
	for kind := range firstAt {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if firstAt[kinds[i]] != firstAt[kinds[j]] {
			return firstAt[kinds[i]] < firstAt[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}
