package services

import (
	"crypto-support-bot/models"
)

// Classifier is the single entry point combining price detection,
// category escalation and FAQ matching into one decision per inbound
// message.
type Classifier struct {
	store      *KnowledgeStore
	categories *CategoryClassifier
}

// NewClassifier wires the knowledge store and category classifier into
// the top-level intent classifier
func NewClassifier(store *KnowledgeStore, categories *CategoryClassifier) *Classifier {
	return &Classifier{
		store:      store,
		categories: categories,
	}
}

// Classify decides how to route a message, in strict priority order:
//
//  1. Price query: cheap, deterministic and common, so it pre-empts the
//     more expensive fuzzy FAQ pass entirely.
//  2. Category escalation: escalation correctness matters more than
//     answering a coincidentally FAQ-shaped urgent message with a
//     canned answer.
//  3. FAQ answer above the confidence threshold.
//  4. Random fallback, still subject to the generic-distress forwarding
//     check.
//
// Keyboard/menu literals are a transport-layer concern and never reach
// this method.
func (c *Classifier) Classify(text string) models.RouteDecision {
	if IsPriceQuery(text) {
		return models.RouteDecision{
			Action:   models.ActionPrice,
			Symbol:   ExtractSymbol(text),
			Priority: models.PriorityNormal,
		}
	}

	escalation := c.categories.Escalate(text)
	if len(escalation.Matches) > 0 {
		return models.RouteDecision{
			Action:        models.ActionForward,
			Categories:    escalation.Matches,
			Priority:      escalation.Priority,
			ShouldForward: true,
			DistressScore: escalation.DistressScore,
		}
	}

	match := c.store.FindBestMatch(text)
	if match.Entry != nil {
		return models.RouteDecision{
			Action:     models.ActionAnswer,
			Reply:      c.store.AnnotateAnswer(match.Entry),
			Entry:      match.Entry,
			Confidence: match.Confidence,
			MatchType:  match.MatchType,
			Priority:   models.PriorityNormal,
		}
	}

	decision := models.RouteDecision{
		Action:        models.ActionFallback,
		Reply:         c.store.FallbackResponse(),
		MatchType:     models.MatchFallback,
		Priority:      models.PriorityNormal,
		DistressScore: escalation.DistressScore,
	}
	if escalation.ShouldForward {
		decision.ShouldForward = true
		decision.Priority = escalation.Priority
	}
	return decision
}
