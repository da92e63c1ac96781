package services

import (
	"math/rand"
	"testing"

	"crypto-support-bot/models"
)

func newTestClassifier() *Classifier {
	store := NewKnowledgeStore(
		[]models.FAQEntry{
			{
				ID:       "e-staking",
				Question: "What is staking?",
				Answer:   "Staking locks your tokens to earn rewards.",
				Keywords: []string{"staking", "stake", "rewards"},
			},
		},
		[]string{"Sorry, I didn't catch that."},
		nil,
		nil,
		rand.New(rand.NewSource(1)),
	)

	categories := NewCategoryClassifier(
		[]string{"urgent", "hack"},
		[]string{"interview"},
		[]string{"audit"},
		[]string{"help", "problem", "error", "broken", "down", "failed"},
	)

	return NewClassifier(store, categories)
}

func TestClassifyPriceQuery(t *testing.T) {
	c := newTestClassifier()

	decision := c.Classify("price eth")

	if decision.Action != models.ActionPrice {
		t.Fatalf("action = %s, want %s", decision.Action, models.ActionPrice)
	}
	if decision.Symbol != "eth" {
		t.Errorf("symbol = %q, want eth", decision.Symbol)
	}
	if decision.Priority != models.PriorityNormal {
		t.Errorf("priority = %s, want %s", decision.Priority, models.PriorityNormal)
	}
}

func TestClassifyPricePreemptsEverything(t *testing.T) {
	c := newTestClassifier()

	// A bare known ticker routes to the price path even though the FAQ
	// store could conceivably fuzzy-match it.
	decision := c.Classify("btc")

	if decision.Action != models.ActionPrice {
		t.Fatalf("action = %s, want %s", decision.Action, models.ActionPrice)
	}
	if decision.Symbol != "btc" {
		t.Errorf("symbol = %q, want btc", decision.Symbol)
	}
}

func TestClassifyCategoryForwards(t *testing.T) {
	c := newTestClassifier()

	decision := c.Classify("URGENT: we found a hack in the bridge")

	if decision.Action != models.ActionForward {
		t.Fatalf("action = %s, want %s", decision.Action, models.ActionForward)
	}
	if !decision.ShouldForward {
		t.Error("ShouldForward = false, want true")
	}
	if decision.Priority != models.PriorityHigh {
		t.Errorf("priority = %s, want %s", decision.Priority, models.PriorityHigh)
	}
	if len(decision.Categories) != 1 || decision.Categories[0].Category != models.CategoryUrgent {
		t.Errorf("categories = %+v, want a single urgent match", decision.Categories)
	}
}

func TestClassifyFAQAnswer(t *testing.T) {
	c := newTestClassifier()

	decision := c.Classify("what is staking")

	if decision.Action != models.ActionAnswer {
		t.Fatalf("action = %s, want %s", decision.Action, models.ActionAnswer)
	}
	if decision.Reply != "Staking locks your tokens to earn rewards." {
		t.Errorf("reply = %q, want the entry answer", decision.Reply)
	}
	if decision.MatchType != models.MatchDirect {
		t.Errorf("match type = %s, want %s", decision.MatchType, models.MatchDirect)
	}
	if decision.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", decision.Confidence)
	}
}

func TestClassifyFallback(t *testing.T) {
	c := newTestClassifier()

	decision := c.Classify("zzz qqq completely unrelated")

	if decision.Action != models.ActionFallback {
		t.Fatalf("action = %s, want %s", decision.Action, models.ActionFallback)
	}
	if decision.Reply != "Sorry, I didn't catch that." {
		t.Errorf("reply = %q, want the configured fallback", decision.Reply)
	}
	if decision.ShouldForward {
		t.Error("ShouldForward = true, want false for benign unmatched text")
	}
}

func TestClassifyFallbackWithDistressForwards(t *testing.T) {
	c := newTestClassifier()

	// No category keywords, no FAQ match, six distress words: the reply
	// is still a fallback but the message also forwards at medium
	// priority.
	decision := c.Classify("help i have a problem there is an error everything is broken and down it failed")

	if decision.Action != models.ActionFallback {
		t.Fatalf("action = %s, want %s", decision.Action, models.ActionFallback)
	}
	if !decision.ShouldForward {
		t.Error("ShouldForward = false, want true above the distress threshold")
	}
	if decision.Priority != models.PriorityMedium {
		t.Errorf("priority = %s, want %s", decision.Priority, models.PriorityMedium)
	}
	if decision.DistressScore <= distressForwardThreshold {
		t.Errorf("distress score = %v, want > %v", decision.DistressScore, distressForwardThreshold)
	}
}
