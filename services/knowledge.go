package services

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xrash/smetrics"

	"crypto-support-bot/models"
)

const (
	// matchThreshold is deliberately strict: a wrong canned answer is
	// worse than an honest fallback.
	matchThreshold = 0.9

	// partialThreshold is looser because the partial-word pass is an
	// explicit last resort, not a primary path.
	partialThreshold = 0.5

	// Weights for the fuzzy pass blend of string similarity and keyword
	// overlap.
	similarityWeight = 0.7
	keywordWeight    = 0.3

	maxDerivedKeywords = 5

	defaultFallback = "Sorry, I couldn't understand that. Could you try rephrasing?"
)

// stopWords is the closed list excluded from auto-derived keywords:
// articles, prepositions, common auxiliaries and wh-words.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "am": true,
	"do": true, "does": true, "did": true, "done": true,
	"can": true, "could": true, "will": true, "would": true,
	"shall": true, "should": true, "may": true, "might": true, "must": true,
	"have": true, "has": true, "had": true,
	"what": true, "when": true, "where": true, "which": true,
	"who": true, "whom": true, "whose": true, "why": true, "how": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "from": true, "with": true, "about": true, "into": true,
	"over": true, "under": true, "after": true, "before": true,
	"and": true, "or": true, "but": true, "not": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "you": true, "your": true,
	"i": true, "we": true, "they": true, "me": true, "my": true, "our": true,
}

// FAQRepository is the backing definition source for FAQ entries. The
// store loads through it once at startup and writes back on mutation.
type FAQRepository interface {
	LoadEntries(ctx context.Context) ([]models.FAQEntry, error)
	SaveEntry(ctx context.Context, entry models.FAQEntry) error
}

// KnowledgeStore owns the ordered FAQ entry list, the fallback response
// list and the cosmetic project-name annotations. One instance per
// process, constructed once at startup and handed to every caller so
// tests can build isolated instances.
//
// The read path is guarded by an RWMutex so concurrent in-flight
// classifications never race with an admin AddEntry. Concurrent
// AddEntry calls could still interleave their persistence writes and
// lose an update; accepted given the admin-triggered call frequency.
type KnowledgeStore struct {
	mu        sync.RWMutex
	entries   []models.FAQEntry
	fallbacks []string
	projects  map[string][]string
	repo      FAQRepository
	rng       *rand.Rand
}

// NewKnowledgeStore creates a knowledge store over the given entries.
// rng drives fallback selection and is injected so tests can assert
// deterministic picks; nil gets a time-seeded source.
func NewKnowledgeStore(entries []models.FAQEntry, fallbacks []string, projects map[string][]string, repo FAQRepository, rng *rand.Rand) *KnowledgeStore {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &KnowledgeStore{
		entries:   entries,
		fallbacks: fallbacks,
		projects:  projects,
		repo:      repo,
		rng:       rng,
	}
}

// FindBestMatch maps a free-text question to the best-matching FAQ
// entry. Stages, in order: direct normalized equality, keyword-overlap
// score, fuzzy similarity blend, partial word overlap. Each stage
// short-circuits when its threshold is met; ties break to the first
// entry in definition order. Never fails on malformed input: blank or
// unmatched questions come back as MatchFallback with a nil entry.
func (s *KnowledgeStore) FindBestMatch(question string) models.MatchResult {
	normalized := NormalizeText(question)
	if normalized == "" {
		return models.MatchResult{Confidence: 0, MatchType: models.MatchFallback}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Direct match wins over any other entry's score.
	for i := range s.entries {
		if NormalizeText(s.entries[i].Question) == normalized {
			return models.MatchResult{
				Entry:      &s.entries[i],
				Confidence: 1.0,
				MatchType:  models.MatchDirect,
			}
		}
	}

	// Keyword-overlap pass: cheap, catches paraphrases sharing
	// vocabulary. Strict > keeps the first entry on ties.
	bestScore := 0.0
	bestIdx := -1
	for i := range s.entries {
		score := keywordOverlap(normalized, &s.entries[i])
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestScore >= matchThreshold {
		return models.MatchResult{
			Entry:      &s.entries[bestIdx],
			Confidence: bestScore,
			MatchType:  models.MatchKeyword,
		}
	}

	// Fuzzy pass: the expensive catch-all for near-miss phrasing.
	bestScore = 0.0
	bestIdx = -1
	for i := range s.entries {
		similarity := smetrics.JaroWinkler(normalized, NormalizeText(s.entries[i].Question), 0.7, 4)
		combined := similarityWeight*similarity + keywordWeight*keywordOverlap(normalized, &s.entries[i])
		if combined > bestScore {
			bestScore = combined
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestScore >= matchThreshold {
		return models.MatchResult{
			Entry:      &s.entries[bestIdx],
			Confidence: bestScore,
			MatchType:  models.MatchFuzzy,
		}
	}

	// Partial-word fallback before giving up entirely.
	words := significantWords(normalized)
	if len(words) > 0 {
		bestScore = 0.0
		bestIdx = -1
		for i := range s.entries {
			entryQuestion := NormalizeText(s.entries[i].Question)
			matched := 0
			for _, w := range words {
				if strings.Contains(entryQuestion, w) {
					matched++
				}
			}
			score := float64(matched) / float64(len(words))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestScore >= partialThreshold {
			return models.MatchResult{
				Entry:      &s.entries[bestIdx],
				Confidence: bestScore,
				MatchType:  models.MatchPartial,
			}
		}
	}

	return models.MatchResult{Confidence: 0, MatchType: models.MatchFallback}
}

// keywordOverlap scores an entry as matchedKeywords/totalKeywords, where
// a keyword matches if the normalized question contains its normalized
// form as a substring. Entries without keywords score zero; they can
// still match through the fuzzy pass.
func keywordOverlap(normalizedQuestion string, entry *models.FAQEntry) float64 {
	if len(entry.Keywords) == 0 {
		return 0
	}
	matched := 0
	for _, kw := range entry.Keywords {
		if strings.Contains(normalizedQuestion, NormalizeText(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(entry.Keywords))
}

// significantWords returns the words of length > 2
func significantWords(normalized string) []string {
	var words []string
	for _, w := range strings.Fields(normalized) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// FallbackResponse picks a uniformly-random fallback reply
func (s *KnowledgeStore) FallbackResponse() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.fallbacks) == 0 {
		return defaultFallback
	}
	return s.fallbacks[s.rng.Intn(len(s.fallbacks))]
}

// AddEntry validates and appends a new FAQ entry, then writes it back
// through the definition source. On a persistence failure the in-memory
// entry is kept and a *PersistenceError is returned alongside it: the
// store and the backing source may diverge until the next successful
// write.
func (s *KnowledgeStore) AddEntry(ctx context.Context, question, answer string, keywords []string) (*models.FAQEntry, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	if question == "" {
		return nil, &ValidationError{Field: "question", Reason: "must not be empty"}
	}
	if answer == "" {
		return nil, &ValidationError{Field: "answer", Reason: "must not be empty"}
	}

	if len(keywords) == 0 {
		keywords = deriveKeywords(question)
	}

	entry := models.FAQEntry{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Keywords:  keywords,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	slog.Info("FAQ entry added",
		"entryID", entry.ID,
		"question", entry.Question,
		"keywords", entry.Keywords,
	)

	if s.repo != nil {
		if err := s.repo.SaveEntry(ctx, entry); err != nil {
			slog.Error("Failed to persist FAQ entry, keeping in-memory copy",
				"entryID", entry.ID,
				"error", err,
			)
			return &entry, &PersistenceError{Op: "save faq entry", Err: err}
		}
	}

	return &entry, nil
}

// deriveKeywords extracts up to maxDerivedKeywords keywords from a
// question: normalized words minus stop-words and words of length <= 2,
// first occurrences in original order.
func deriveKeywords(question string) []string {
	seen := make(map[string]bool)
	var keywords []string

	for _, w := range strings.Fields(NormalizeText(question)) {
		if len(w) <= 2 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
		if len(keywords) == maxDerivedKeywords {
			break
		}
	}

	return keywords
}

// Search returns all entries whose question, answer or any keyword
// contains the term, case-insensitive, in insertion order. No ranking.
func (s *KnowledgeStore) Search(term string) []models.FAQEntry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.FAQEntry
	for _, entry := range s.entries {
		if entryContains(entry, term) {
			results = append(results, entry)
		}
	}
	return results
}

func entryContains(entry models.FAQEntry, lowerTerm string) bool {
	if strings.Contains(strings.ToLower(entry.Question), lowerTerm) {
		return true
	}
	if strings.Contains(strings.ToLower(entry.Answer), lowerTerm) {
		return true
	}
	for _, kw := range entry.Keywords {
		if strings.Contains(strings.ToLower(kw), lowerTerm) {
			return true
		}
	}
	return false
}

// ListAll returns every entry's canonical question for display
func (s *KnowledgeStore) ListAll() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	questions := make([]string, len(s.entries))
	for i, entry := range s.entries {
		questions[i] = entry.Question
	}
	return questions
}

// Len returns the number of entries currently loaded
func (s *KnowledgeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// AnnotateAnswer appends a "referenced projects" footer when the answer
// mentions known external project names. Cosmetic only.
func (s *KnowledgeStore) AnnotateAnswer(entry *models.FAQEntry) string {
	if entry == nil {
		return ""
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lowerAnswer := strings.ToLower(entry.Answer)
	seen := make(map[string]bool)
	var referenced []string
	for _, names := range s.projects {
		for _, name := range names {
			if !seen[name] && strings.Contains(lowerAnswer, strings.ToLower(name)) {
				seen[name] = true
				referenced = append(referenced, name)
			}
		}
	}

	if len(referenced) == 0 {
		return entry.Answer
	}
	sort.Strings(referenced)
	return entry.Answer + "\n\nReferenced projects: " + strings.Join(referenced, ", ")
}
