package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"crypto-support-bot/models"
)

func testEntries() []models.FAQEntry {
	return []models.FAQEntry{
		{
			ID:       "e-staking",
			Question: "What is staking?",
			Answer:   "Staking locks your tokens to secure the network and earn rewards.",
			Keywords: []string{"staking", "stake", "rewards"},
		},
		{
			ID:       "e-withdrawal",
			Question: "How long does a withdrawal take to process?",
			Answer:   "Withdrawals usually complete within 30 minutes.",
			Keywords: []string{"withdrawal", "time"},
		},
	}
}

func newTestStore(entries []models.FAQEntry) *KnowledgeStore {
	return NewKnowledgeStore(entries, []string{"fallback one", "fallback two"}, nil, nil, rand.New(rand.NewSource(1)))
}

func TestFindBestMatchDirect(t *testing.T) {
	store := newTestStore(testEntries())

	// Punctuation and casing differences still count as a direct match
	result := store.FindBestMatch("  What is STAKING?! ")

	if result.MatchType != models.MatchDirect {
		t.Fatalf("match type = %s, want %s", result.MatchType, models.MatchDirect)
	}
	if result.Entry == nil || result.Entry.ID != "e-staking" {
		t.Fatalf("matched entry = %+v, want e-staking", result.Entry)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.Confidence)
	}
}

func TestFindBestMatchKeyword(t *testing.T) {
	store := newTestStore(testEntries())

	// Not a direct match, but every keyword of e-staking appears
	result := store.FindBestMatch("how do rewards work when i stake for staking")

	if result.MatchType != models.MatchKeyword {
		t.Fatalf("match type = %s, want %s", result.MatchType, models.MatchKeyword)
	}
	if result.Entry == nil || result.Entry.ID != "e-staking" {
		t.Fatalf("matched entry = %+v, want e-staking", result.Entry)
	}
	if result.Confidence < matchThreshold {
		t.Errorf("confidence = %v, want >= %v", result.Confidence, matchThreshold)
	}
}

func TestFindBestMatchKeywordBelowThreshold(t *testing.T) {
	// One of three keywords matched is well below the match threshold, so
	// the keyword pass must not claim this query.
	store := newTestStore(testEntries())

	result := store.FindBestMatch("zzz qqq rewards vvv www")

	if result.MatchType == models.MatchKeyword {
		t.Fatalf("keyword pass claimed a 1/3 overlap: %+v", result)
	}
}

func TestFindBestMatchKeywordThresholdBoundary(t *testing.T) {
	// Nine of ten keywords present is exactly the threshold and must
	// resolve as a keyword match.
	atThreshold := newTestStore([]models.FAQEntry{{
		ID:       "e-ten",
		Question: "Completely different phrasing here?",
		Keywords: []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliett"},
	}})

	result := atThreshold.FindBestMatch("alpha bravo charlie delta echo foxtrot golf hotel india")
	if result.MatchType != models.MatchKeyword {
		t.Fatalf("match type at 9/10 overlap = %s, want %s", result.MatchType, models.MatchKeyword)
	}
	if result.Confidence < matchThreshold {
		t.Errorf("confidence = %v, want >= %v", result.Confidence, matchThreshold)
	}

	// Eight of nine keywords is just under the threshold; the keyword
	// pass must not claim it.
	belowThreshold := newTestStore([]models.FAQEntry{{
		ID:       "e-nine",
		Question: "Totally unrelated wording?",
		Keywords: []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india"},
	}})

	result = belowThreshold.FindBestMatch("alpha bravo charlie delta echo foxtrot golf hotel")
	if result.MatchType == models.MatchKeyword {
		t.Fatalf("keyword pass claimed an 8/9 overlap (confidence %v)", result.Confidence)
	}
	if result.MatchType != models.MatchFallback {
		t.Errorf("match type at 8/9 overlap = %s, want %s", result.MatchType, models.MatchFallback)
	}
}

func TestFindBestMatchPartial(t *testing.T) {
	store := newTestStore(testEntries())

	// Both significant words appear inside e-withdrawal's question, but
	// only one of its two keywords is present so the keyword pass misses.
	result := store.FindBestMatch("withdrawal process")

	if result.MatchType != models.MatchPartial {
		t.Fatalf("match type = %s, want %s", result.MatchType, models.MatchPartial)
	}
	if result.Entry == nil || result.Entry.ID != "e-withdrawal" {
		t.Fatalf("matched entry = %+v, want e-withdrawal", result.Entry)
	}
	if result.Confidence < partialThreshold {
		t.Errorf("confidence = %v, want >= %v", result.Confidence, partialThreshold)
	}
}

func TestFindBestMatchFallback(t *testing.T) {
	store := newTestStore(testEntries())

	tests := []struct {
		name  string
		input string
	}{
		{"blank", ""},
		{"only punctuation", "?!?"},
		{"unrelated text", "zzz qqq xxx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := store.FindBestMatch(tt.input)
			if result.MatchType != models.MatchFallback {
				t.Errorf("match type = %s, want %s", result.MatchType, models.MatchFallback)
			}
			if result.Entry != nil {
				t.Errorf("entry = %+v, want nil", result.Entry)
			}
			if result.Confidence != 0 {
				t.Errorf("confidence = %v, want 0", result.Confidence)
			}
		})
	}
}

func TestFindBestMatchTieKeepsFirstEntry(t *testing.T) {
	entries := []models.FAQEntry{
		{ID: "first", Question: "Alpha beta question one?", Keywords: []string{"alpha", "beta"}},
		{ID: "second", Question: "Alpha beta question two?", Keywords: []string{"alpha", "beta"}},
	}
	store := newTestStore(entries)

	result := store.FindBestMatch("tell me about alpha and beta")

	if result.Entry == nil || result.Entry.ID != "first" {
		t.Fatalf("tie broke to %+v, want the first entry", result.Entry)
	}
}

func TestFallbackResponseDeterministicWithSeed(t *testing.T) {
	fallbacks := []string{"one", "two", "three", "four"}
	store := NewKnowledgeStore(nil, fallbacks, nil, nil, rand.New(rand.NewSource(42)))

	reference := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		want := fallbacks[reference.Intn(len(fallbacks))]
		got := store.FallbackResponse()
		if got != want {
			t.Fatalf("pick %d = %q, want %q", i, got, want)
		}
	}
}

func TestFallbackResponseEmptyList(t *testing.T) {
	store := NewKnowledgeStore(nil, nil, nil, nil, rand.New(rand.NewSource(1)))
	if got := store.FallbackResponse(); got != defaultFallback {
		t.Errorf("FallbackResponse() = %q, want the built-in default", got)
	}
}

func TestAddEntryValidation(t *testing.T) {
	store := newTestStore(nil)

	tests := []struct {
		name     string
		question string
		answer   string
		field    string
	}{
		{"empty question", "", "answer", "question"},
		{"whitespace question", "   ", "answer", "question"},
		{"empty answer", "question", "", "answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := store.AddEntry(context.Background(), tt.question, tt.answer, nil)
			if entry != nil {
				t.Errorf("entry = %+v, want nil", entry)
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("field = %q, want %q", validationErr.Field, tt.field)
			}
		})
	}

	if store.Len() != 0 {
		t.Errorf("store grew to %d entries on rejected input", store.Len())
	}
}

func TestAddEntryDerivesKeywords(t *testing.T) {
	store := newTestStore(nil)

	entry, err := store.AddEntry(context.Background(), "How do I connect my wallet to the app?", "Open settings and tap connect.", nil)
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	want := []string{"connect", "wallet", "app"}
	if len(entry.Keywords) != len(want) {
		t.Fatalf("keywords = %v, want %v", entry.Keywords, want)
	}
	for i := range want {
		if entry.Keywords[i] != want[i] {
			t.Fatalf("keywords = %v, want %v", entry.Keywords, want)
		}
	}
}

func TestAddEntryCapsDerivedKeywords(t *testing.T) {
	store := newTestStore(nil)

	entry, err := store.AddEntry(context.Background(), "alpha bravo charlie delta echo foxtrot golf", "answer", nil)
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if len(entry.Keywords) != maxDerivedKeywords {
		t.Errorf("derived %d keywords, want %d", len(entry.Keywords), maxDerivedKeywords)
	}
}

// failingRepo rejects every write so persistence failure handling can be
// exercised without a database.
type failingRepo struct{}

func (failingRepo) LoadEntries(ctx context.Context) ([]models.FAQEntry, error) {
	return nil, nil
}

func (failingRepo) SaveEntry(ctx context.Context, entry models.FAQEntry) error {
	return fmt.Errorf("connection refused")
}

func TestAddEntryPersistenceFailureKeepsEntry(t *testing.T) {
	store := NewKnowledgeStore(nil, nil, nil, failingRepo{}, rand.New(rand.NewSource(1)))

	entry, err := store.AddEntry(context.Background(), "What is slippage?", "The difference between expected and executed price.", []string{"slippage"})

	var persistenceErr *PersistenceError
	if !errors.As(err, &persistenceErr) {
		t.Fatalf("error = %v, want *PersistenceError", err)
	}
	if entry == nil {
		t.Fatal("entry = nil, want the in-memory entry alongside the error")
	}

	// The entry must stay live and answer queries despite the failed write
	result := store.FindBestMatch("what is slippage")
	if result.MatchType != models.MatchDirect || result.Entry == nil || result.Entry.ID != entry.ID {
		t.Errorf("in-memory entry not matchable after persistence failure: %+v", result)
	}
}

func TestSearch(t *testing.T) {
	store := newTestStore(testEntries())

	tests := []struct {
		name    string
		term    string
		wantIDs []string
	}{
		{"matches question", "WITHDRAWAL", []string{"e-withdrawal"}},
		{"matches answer", "secure the network", []string{"e-staking"}},
		{"matches keyword", "stake", []string{"e-staking"}},
		{"no match", "liquidity", nil},
		{"blank term", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := store.Search(tt.term)
			if len(results) != len(tt.wantIDs) {
				t.Fatalf("Search(%q) returned %d entries, want %d", tt.term, len(results), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if results[i].ID != id {
					t.Errorf("result[%d].ID = %q, want %q", i, results[i].ID, id)
				}
			}
		})
	}
}

func TestAnnotateAnswer(t *testing.T) {
	projects := map[string][]string{
		"wallets": {"MetaMask", "Ledger"},
		"defi":    {"Uniswap"},
	}
	store := NewKnowledgeStore(nil, nil, projects, nil, rand.New(rand.NewSource(1)))

	entry := &models.FAQEntry{Answer: "Connect with MetaMask or swap on Uniswap."}
	got := store.AnnotateAnswer(entry)
	want := "Connect with MetaMask or swap on Uniswap.\n\nReferenced projects: MetaMask, Uniswap"
	if got != want {
		t.Errorf("AnnotateAnswer() = %q, want %q", got, want)
	}

	plain := &models.FAQEntry{Answer: "No known projects here."}
	if got := store.AnnotateAnswer(plain); got != plain.Answer {
		t.Errorf("AnnotateAnswer() = %q, want the answer unchanged", got)
	}

	if got := store.AnnotateAnswer(nil); got != "" {
		t.Errorf("AnnotateAnswer(nil) = %q, want empty", got)
	}
}
