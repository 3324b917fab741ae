// internal/insights/classify/classify.go
package classify

import (
	"sort"

	"adinsight-workers/internal/insights/extract"
	"adinsight-workers/internal/insights/request"
	"adinsight-workers/internal/insights/vocabulary"
	"adinsight-workers/internal/models"
)

// MinContentLength gates assistant messages: anything shorter cannot hold a
// meaningful data section and is left as plain text.
const MinContentLength = 100

// Classifier is the public entry point of the engine. It holds no mutable
// state, so one instance may serve concurrent callers, and Classify is
// idempotent: re-invoking it on the same message, including a still
// streaming partial one, always yields the same result.
type Classifier struct {
	vocab      vocabulary.Vocabulary
	extractors []extract.Extractor
	detector   *request.Detector
}

// Option customizes a Classifier, mainly so tests can substitute a reduced
// vocabulary or extractor set.
type Option func(*Classifier)

func WithVocabulary(vocab vocabulary.Vocabulary) Option {
	return func(c *Classifier) {
		c.vocab = vocab
		c.extractors = extract.Extractors(vocab)
		c.detector = request.NewDetector(vocab)
	}
}

func WithExtractors(extractors ...extract.Extractor) Option {
	return func(c *Classifier) { c.extractors = extractors }
}

func New(opts ...Option) *Classifier {
	c := &Classifier{}
	WithVocabulary(vocabulary.Default())(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify maps one raw message to its visualization descriptors. Direct
// chart requests short-circuit content extraction entirely; user prose and
// short messages yield no descriptors at all. The returned slice is never
// nil and is ordered by span position in the original text.
func (c *Classifier) Classify(msg models.RawMessage) []models.VisualizationDescriptor {
	if desc := c.detector.Detect(msg); desc != nil {
		return []models.VisualizationDescriptor{*desc}
	}
	if msg.Role == models.RoleUser || len(msg.Content) < MinContentLength {
		return []models.VisualizationDescriptor{}
	}

	var candidates []extract.CandidateMatch
	for _, ext := range c.extractors {
		for _, cand := range ext.Extract(msg.Content) {
			if cand.Span[0] < 0 || cand.Span[0] >= cand.Span[1] || cand.Span[1] > len(msg.Content) {
				continue
			}
			candidates = append(candidates, cand)
		}
	}

	winners := resolveOverlaps(candidates)
	sort.SliceStable(winners, func(i, j int) bool { return winners[i].Span[0] < winners[j].Span[0] })

	descriptors := make([]models.VisualizationDescriptor, 0, len(winners))
	for _, cand := range winners {
		descriptors = append(descriptors, models.VisualizationDescriptor{
			Shape:        cand.Shape,
			Title:        cand.Title,
			Description:  cand.Description,
			Data:         cand.Payload,
			OriginalText: msg.Content[cand.Span[0]:cand.Span[1]],
		})
	}
	return descriptors
}
