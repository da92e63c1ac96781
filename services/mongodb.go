package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crypto-support-bot/models"
)

var (
	mongoClient *mongo.Client
	database    *mongo.Database
)

// GetDatabase returns the MongoDB database instance
func GetDatabase() *mongo.Database {
	return database
}

// InitMongoDB initializes MongoDB connection
func InitMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB")
	mongoClient = client

	return client, nil
}

// InitServices selects the database and creates indexes
func InitServices(client *mongo.Client, databaseName string) {
	database = client.Database(databaseName)

	createIndexes()
}

func createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	messagesCollection := database.Collection("messages")
	messagesCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"chat_id": 1}},
		{Keys: bson.M{"timestamp": -1}},
	})

	faqCollection := database.Collection("faq_entries")
	faqCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"entry_id": 1},
		Options: options.Index().SetUnique(true),
	})

	interactionsCollection := database.Collection("interactions")
	interactionsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"action": 1}},
		{Keys: bson.M{"timestamp": -1}},
	})

	forwardsCollection := database.Collection("forwards")
	forwardsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"forward_id": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"priority": 1}},
		{Keys: bson.M{"created_at": -1}},
	})

	customersCollection := database.Collection("customers")
	customersCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"chat_id": 1},
		Options: options.Index().SetUnique(true),
	})
}

// SaveMessage saves a chat message to the database
func SaveMessage(ctx context.Context, message *models.Message) error {
	collection := database.Collection("messages")
	_, err := collection.InsertOne(ctx, message)
	return err
}

// GetChatHistory fetches recent messages for a chat, oldest first
func GetChatHistory(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	collection := database.Collection("messages")

	if limit <= 0 {
		limit = 20
	}

	findOptions := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{"chat_id": chatID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// SaveInteraction records one classified exchange for analytics
func SaveInteraction(ctx context.Context, interaction *models.Interaction) error {
	collection := database.Collection("interactions")
	_, err := collection.InsertOne(ctx, interaction)
	return err
}

// InteractionStats aggregates interaction counts per routing action
func InteractionStats(ctx context.Context) (map[string]int64, error) {
	collection := database.Collection("interactions")

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$action",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Action string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		stats[row.Action] = row.Count
	}

	return stats, cursor.Err()
}

// CountMessages returns the total number of stored messages
func CountMessages(ctx context.Context) (int64, error) {
	return database.Collection("messages").CountDocuments(ctx, bson.M{})
}

// SaveForward persists a forward record for the operator queue
func SaveForward(ctx context.Context, record *models.ForwardRecord) error {
	collection := database.Collection("forwards")
	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		slog.Error("Failed to save forward record",
			"error", err,
			"forwardID", record.ForwardID,
		)
		return err
	}

	slog.Info("Forward record saved",
		"forwardID", record.ForwardID,
		"chatID", record.ChatID,
		"priority", record.Priority,
	)
	return nil
}

// ListForwards returns the most recent forward records
func ListForwards(ctx context.Context, limit int) ([]models.ForwardRecord, error) {
	collection := database.Collection("forwards")

	if limit <= 0 {
		limit = 50
	}

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.ForwardRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}
