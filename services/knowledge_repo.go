package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crypto-support-bot/config"
	"crypto-support-bot/models"
)

// MongoFAQRepository implements FAQRepository on the faq_entries
// collection
type MongoFAQRepository struct{}

// NewMongoFAQRepository returns a repository over the shared database
// handle
func NewMongoFAQRepository() *MongoFAQRepository {
	return &MongoFAQRepository{}
}

// LoadEntries reads all FAQ entries in insertion order
func (r *MongoFAQRepository) LoadEntries(ctx context.Context) ([]models.FAQEntry, error) {
	collection := database.Collection("faq_entries")

	findOptions := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load FAQ entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.FAQEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode FAQ entries: %w", err)
	}

	return entries, nil
}

// SaveEntry upserts a single FAQ entry by its stable ID
func (r *MongoFAQRepository) SaveEntry(ctx context.Context, entry models.FAQEntry) error {
	collection := database.Collection("faq_entries")

	filter := bson.M{"entry_id": entry.ID}
	update := bson.M{"$set": entry}
	opts := options.Update().SetUpsert(true)

	if _, err := collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save FAQ entry: %w", err)
	}

	return nil
}

// SeedFAQEntries inserts the built-in definitions when the collection is
// empty, so a fresh deployment answers common questions out of the box.
// Entries added at runtime are never touched.
func SeedFAQEntries(ctx context.Context, seeds []config.FAQSeed) error {
	collection := database.Collection("faq_entries")

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count FAQ entries: %w", err)
	}
	if count > 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(seeds))
	now := time.Now()
	for i, seed := range seeds {
		docs = append(docs, models.FAQEntry{
			ID:        seed.ID,
			Question:  seed.Question,
			Answer:    seed.Answer,
			Keywords:  seed.Keywords,
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond), // preserve definition order under the created_at sort
		})
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed FAQ entries: %w", err)
	}

	slog.Info("Seeded FAQ entries", "count", len(docs))
	return nil
}
