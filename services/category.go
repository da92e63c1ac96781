package services

import (
	"strings"

	"crypto-support-bot/models"
)

const (
	// urgentWeight is higher than the other categories on purpose:
	// urgent-sounding text should escalate faster.
	urgentWeight   = 0.3
	categoryWeight = 0.25
	distressWeight = 0.1

	// distressForwardThreshold is the distress score above which a
	// message is forwarded at medium priority even without a category
	// hit.
	distressForwardThreshold = 0.5
)

// EscalationResult aggregates category and distress signals into a
// forwarding decision. The policy is intentionally forgiving: a single
// category keyword escalates, because an unprocessed urgent request is
// worse than an over-eager forward.
type EscalationResult struct {
	ShouldForward bool
	Priority      models.Priority
	Matches       []models.CategoryMatch
	DistressScore float64
}

// CategoryClassifier detects whether free text belongs to one or more
// operator-defined categories, each backed by a configured keyword list.
type CategoryClassifier struct {
	keywords      map[models.Category][]string
	distressWords []string
}

// NewCategoryClassifier creates a classifier over the three configured
// keyword lists plus the generic distress vocabulary.
func NewCategoryClassifier(urgent, media, audit, distress []string) *CategoryClassifier {
	return &CategoryClassifier{
		keywords: map[models.Category][]string{
			models.CategoryUrgent: urgent,
			models.CategoryMedia:  media,
			models.CategoryAudit:  audit,
		},
		distressWords: distress,
	}
}

// categoryOrder fixes the emission order; categories are independent and
// a text may match several at once.
var categoryOrder = []models.Category{
	models.CategoryUrgent,
	models.CategoryMedia,
	models.CategoryAudit,
}

// Classify lower-cases the text and checks substring containment per
// keyword. No punctuation stripping here: the configured keywords are
// matched against the raw lower-cased text.
func (c *CategoryClassifier) Classify(text string) []models.CategoryMatch {
	lower := strings.ToLower(text)

	var matches []models.CategoryMatch
	for _, category := range categoryOrder {
		var matched []string
		for _, kw := range c.keywords[category] {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		weight := categoryWeight
		if category == models.CategoryUrgent {
			weight = urgentWeight
		}

		matches = append(matches, models.CategoryMatch{
			Category:        category,
			MatchedKeywords: matched,
			Confidence:      float64(len(matched)) * weight,
		})
	}

	return matches
}

// DistressScore sums the generic distress increments for the text
func (c *CategoryClassifier) DistressScore(text string) float64 {
	lower := strings.ToLower(text)

	score := 0.0
	for _, w := range c.distressWords {
		if strings.Contains(lower, w) {
			score += distressWeight
		}
	}
	return score
}

// Escalate applies the aggregation policy: any category hit forwards at
// high priority regardless of confidence magnitude; otherwise a distress
// score above the threshold forwards at medium priority.
func (c *CategoryClassifier) Escalate(text string) EscalationResult {
	matches := c.Classify(text)
	distress := c.DistressScore(text)

	if len(matches) > 0 {
		return EscalationResult{
			ShouldForward: true,
			Priority:      models.PriorityHigh,
			Matches:       matches,
			DistressScore: distress,
		}
	}

	if distress > distressForwardThreshold {
		return EscalationResult{
			ShouldForward: true,
			Priority:      models.PriorityMedium,
			DistressScore: distress,
		}
	}

	return EscalationResult{
		Priority:      models.PriorityNormal,
		DistressScore: distress,
	}
}
