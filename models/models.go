package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchType tags how a FAQ lookup was resolved
type MatchType string

const (
	MatchDirect   MatchType = "direct"
	MatchKeyword  MatchType = "keyword"
	MatchFuzzy    MatchType = "fuzzy"
	MatchPartial  MatchType = "partial"
	MatchFallback MatchType = "fallback"
)

// FAQEntry represents a single question/answer record in the knowledge base
type FAQEntry struct {
	ID        string    `bson:"entry_id" json:"id"`
	Question  string    `bson:"question" json:"question"`
	Answer    string    `bson:"answer" json:"answer"`
	Keywords  []string  `bson:"keywords" json:"keywords"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MatchResult is the outcome of a single FAQ lookup. Never persisted.
type MatchResult struct {
	Entry      *FAQEntry `json:"entry,omitempty"`
	Confidence float64   `json:"confidence"`
	MatchType  MatchType `json:"match_type"`
}

// Category identifies an operator-defined keyword category
type Category string

const (
	CategoryUrgent Category = "urgent"
	CategoryMedia  Category = "media"
	CategoryAudit  Category = "audit"
	CategoryNone   Category = "none"
)

// CategoryMatch reports a keyword-category hit. Confidence accumulates
// additively per matched keyword and is deliberately not capped at 1.0:
// the aggregation policy only checks threshold crossings, and more hits
// must keep increasing escalation likelihood.
type CategoryMatch struct {
	Category        Category `json:"category"`
	MatchedKeywords []string `json:"matched_keywords"`
	Confidence      float64  `json:"confidence"`
}

// Priority labels a forwarded message for the operator channel
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PriceQuery is the transient result of price-query detection
type PriceQuery struct {
	RawText string `json:"raw_text"`
	Symbol  string `json:"symbol"`
	IsValid bool   `json:"is_valid"`
}

// Action is the routing decision for an inbound message
type Action string

const (
	ActionPrice    Action = "price"
	ActionForward  Action = "forward"
	ActionAnswer   Action = "answer"
	ActionFallback Action = "fallback"
)

// RouteDecision is the single call surface the classifier exposes to the
// transport layer: one decision per inbound message.
type RouteDecision struct {
	Action        Action          `json:"action"`
	Reply         string          `json:"reply,omitempty"`
	Symbol        string          `json:"symbol,omitempty"`
	Entry         *FAQEntry       `json:"entry,omitempty"`
	Confidence    float64         `json:"confidence,omitempty"`
	MatchType     MatchType       `json:"match_type,omitempty"`
	Categories    []CategoryMatch `json:"categories,omitempty"`
	Priority      Priority        `json:"priority"`
	ShouldForward bool            `json:"should_forward"`
	DistressScore float64         `json:"distress_score,omitempty"`
}

// Message represents a chat message stored for history and analytics
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID     string             `bson:"chat_id" json:"chat_id"`
	SenderID   string             `bson:"sender_id" json:"sender_id"`
	SenderName string             `bson:"sender_name,omitempty" json:"sender_name,omitempty"`
	Text       string             `bson:"text" json:"text"`
	IsBot      bool               `bson:"is_bot" json:"is_bot"`
	IsHuman    bool               `bson:"is_human,omitempty" json:"is_human,omitempty"` // sent by an operator, not the bot
	Intent     string             `bson:"intent,omitempty" json:"intent,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// Interaction records one classified exchange for the stats dashboard
type Interaction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID     string             `bson:"chat_id" json:"chat_id"`
	Action     Action             `bson:"action" json:"action"`
	MatchType  MatchType          `bson:"match_type,omitempty" json:"match_type,omitempty"`
	EntryID    string             `bson:"entry_id,omitempty" json:"entry_id,omitempty"`
	Symbol     string             `bson:"symbol,omitempty" json:"symbol,omitempty"`
	Confidence float64            `bson:"confidence" json:"confidence"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// ForwardRecord is a message escalated to the human operator channel.
// Delivery is best effort: the record is the source of truth, the
// operator-channel push may be lost and re-read from here.
type ForwardRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ForwardID       string             `bson:"forward_id" json:"forward_id"`
	ChatID          string             `bson:"chat_id" json:"chat_id"`
	SenderName      string             `bson:"sender_name,omitempty" json:"sender_name,omitempty"`
	Text            string             `bson:"text" json:"text"`
	Priority        Priority           `bson:"priority" json:"priority"`
	Categories      []Category         `bson:"categories,omitempty" json:"categories,omitempty"`
	MatchedKeywords []string           `bson:"matched_keywords,omitempty" json:"matched_keywords,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// Customer represents a chat user the bot has seen
type Customer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID       string             `bson:"chat_id" json:"chat_id"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	MessageCount int64              `bson:"message_count" json:"message_count"`
	Stop         bool               `bson:"stop" json:"stop"` // true while a human operator handles the chat
	FirstSeen    time.Time          `bson:"first_seen" json:"first_seen"`
	LastSeen     time.Time          `bson:"last_seen" json:"last_seen"`
}

// MarketQuote is a snapshot from the price provider
type MarketQuote struct {
	Symbol     string    `json:"symbol"`
	ProviderID string    `json:"provider_id"`
	Price      float64   `json:"price"`
	Change24h  float64   `json:"change_24h"`
	MarketCap  float64   `json:"market_cap"`
	Volume24h  float64   `json:"volume_24h"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// GasQuote is a snapshot from the gas oracle, in gwei
type GasQuote struct {
	Safe      float64   `json:"safe"`
	Propose   float64   `json:"propose"`
	Fast      float64   `json:"fast"`
	FetchedAt time.Time `json:"fetched_at"`
}
