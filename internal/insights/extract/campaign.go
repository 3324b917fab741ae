// internal/insights/extract/campaign.go
package extract

import (
	"regexp"
	"strings"

	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

// Lookahead window after a campaign ID in which metric mentions still
// belong to that campaign.
const campaignLookahead = 500

var (
	// An 8+ digit identifier following the word "Campaign" within a short
	// digit-free gap on the same line.
	campaignIDRE = regexp.MustCompile(`(?i)campaign[^\d\n]{0,20}(\d{8,})`)

	// Optional display name between "Campaign" and the identifier.
	campaignNameRE = regexp.MustCompile(`(?i)^campaign\s+"?([A-Za-z][\w \-]{1,40}?)"?\s*[(:]`)
)

// campaignRecordExtractor is the most permissive extractor: it scans the
// whole message for campaign IDs and claims the entire content as its span.
// It exists to catch campaign metrics that appear outside any clearly
// headed section.
type campaignRecordExtractor struct {
	vocab vocabulary.Vocabulary
}

func (e *campaignRecordExtractor) Shape() models.ShapeKind { return models.ShapeCampaignRecord }

func (e *campaignRecordExtractor) Extract(content string) []CandidateMatch {
	idMatches := campaignIDRE.FindAllStringSubmatchIndex(content, -1)
	if idMatches == nil {
		return nil
	}

	var records []models.CampaignRecord
	seen := make(map[string]bool)
	for _, m := range idMatches {
		id := content[m[2]:m[3]]
		if seen[id] {
			continue
		}
		window := content[m[3]:min(m[3]+campaignLookahead, len(content))]
		metrics := metricPairs(window, e.vocab)
		if len(metrics) == 0 {
			continue
		}
		records = append(records, models.CampaignRecord{
			ID:      id,
			Name:    campaignName(content[m[0]:m[2]]),
			Metrics: metrics,
		})
		seen[id] = true
	}
	if len(records) == 0 {
		return nil
	}
	return []CandidateMatch{{
		Shape:      models.ShapeCampaignRecord,
		Confidence: ConfidenceCampaignRecord,
		Span:       [2]int{0, len(content)},
		Title:      "Campaign Details",
		Payload:    models.ShapePayload{CampaignRecords: records},
	}}
}

// campaignName extracts a display name from the text between "Campaign"
// and the identifier, if one was written there.
func campaignName(segment string) string {
	m := campaignNameRE.FindStringSubmatch(segment)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if strings.EqualFold(name, "id") {
		return ""
	}
	return name
}
