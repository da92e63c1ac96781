package services

import (
	"math"
	"testing"

	"crypto-support-bot/models"
)

func newTestCategoryClassifier() *CategoryClassifier {
	return NewCategoryClassifier(
		[]string{"urgent", "hack", "stolen"},
		[]string{"interview", "press", "podcast"},
		[]string{"audit", "security review"},
		[]string{"help", "problem", "error", "broken", "down", "failed"},
	)
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestClassifyCategories(t *testing.T) {
	c := newTestCategoryClassifier()

	tests := []struct {
		name           string
		text           string
		wantCategories []models.Category
	}{
		{"no match", "what is staking", nil},
		{"single urgent", "URGENT please respond", []models.Category{models.CategoryUrgent}},
		{"media only", "we'd like to book a podcast interview", []models.Category{models.CategoryMedia}},
		{"multiple categories", "urgent: the audit found a hack", []models.Category{models.CategoryUrgent, models.CategoryAudit}},
		{"keyword inside word still matches", "my account was hacked", []models.Category{models.CategoryUrgent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := c.Classify(tt.text)
			if len(matches) != len(tt.wantCategories) {
				t.Fatalf("Classify(%q) = %+v, want categories %v", tt.text, matches, tt.wantCategories)
			}
			for i, want := range tt.wantCategories {
				if matches[i].Category != want {
					t.Errorf("match[%d].Category = %s, want %s", i, matches[i].Category, want)
				}
			}
		})
	}
}

func TestClassifyConfidenceWeights(t *testing.T) {
	c := newTestCategoryClassifier()

	// Two urgent keywords at the urgent weight
	matches := c.Classify("urgent, someone tried a hack")
	if len(matches) != 1 {
		t.Fatalf("matches = %+v, want exactly one", matches)
	}
	if !approx(matches[0].Confidence, 2*urgentWeight) {
		t.Errorf("urgent confidence = %v, want %v", matches[0].Confidence, 2*urgentWeight)
	}

	// A single non-urgent category keyword at the base weight
	matches = c.Classify("requesting an audit")
	if len(matches) != 1 {
		t.Fatalf("matches = %+v, want exactly one", matches)
	}
	if !approx(matches[0].Confidence, categoryWeight) {
		t.Errorf("audit confidence = %v, want %v", matches[0].Confidence, categoryWeight)
	}
}

func TestDistressScore(t *testing.T) {
	c := newTestCategoryClassifier()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no distress", "what is staking", 0},
		{"two words", "help, my app is broken", 2 * distressWeight},
		{"case insensitive", "HELP", distressWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.DistressScore(tt.text)
			if !approx(got, tt.want) {
				t.Errorf("DistressScore(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestEscalateCategoryHitForwardsHigh(t *testing.T) {
	c := newTestCategoryClassifier()

	result := c.Escalate("Urgent! Our server is down")

	if !result.ShouldForward {
		t.Fatal("ShouldForward = false, want true on a category hit")
	}
	if result.Priority != models.PriorityHigh {
		t.Errorf("priority = %s, want %s", result.Priority, models.PriorityHigh)
	}
	if len(result.Matches) != 1 || result.Matches[0].Category != models.CategoryUrgent {
		t.Errorf("matches = %+v, want a single urgent match", result.Matches)
	}
	// "down" also counts toward distress alongside the category hit
	if !approx(result.DistressScore, distressWeight) {
		t.Errorf("distress score = %v, want %v", result.DistressScore, distressWeight)
	}
}

func TestEscalateDistressForwardsMedium(t *testing.T) {
	c := newTestCategoryClassifier()

	// Six distress words, no category keywords: over the threshold
	result := c.Escalate("help i have a problem there is an error everything is broken and down it failed")

	if !result.ShouldForward {
		t.Fatal("ShouldForward = false, want true above the distress threshold")
	}
	if result.Priority != models.PriorityMedium {
		t.Errorf("priority = %s, want %s", result.Priority, models.PriorityMedium)
	}
	if len(result.Matches) != 0 {
		t.Errorf("matches = %+v, want none", result.Matches)
	}
}

func TestEscalateNormal(t *testing.T) {
	c := newTestCategoryClassifier()

	result := c.Escalate("how do i stake my tokens")

	if result.ShouldForward {
		t.Fatal("ShouldForward = true, want false for benign text")
	}
	if result.Priority != models.PriorityNormal {
		t.Errorf("priority = %s, want %s", result.Priority, models.PriorityNormal)
	}
}

func TestEscalateDistressAtThresholdDoesNotForward(t *testing.T) {
	// Exactly five distress words sit at the threshold; forwarding
	// requires strictly more.
	c := NewCategoryClassifier(nil, nil, nil, []string{"w1", "w2", "w3", "w4", "w5"})

	result := c.Escalate("w1 w2 w3 w4 w5")
	if result.ShouldForward {
		t.Errorf("ShouldForward = true at the threshold, want false (score %v)", result.DistressScore)
	}
}
