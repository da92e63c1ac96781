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

// SaveOrUpdateCustomer upserts the chat user record and bumps the
// message counter
func SaveOrUpdateCustomer(ctx context.Context, chatID, name string) error {
	collection := database.Collection("customers")

	now := time.Now()
	filter := bson.M{"chat_id": chatID}
	update := bson.M{
		"$set": bson.M{
			"chat_id":   chatID,
			"name":      name,
			"last_seen": now,
		},
		"$setOnInsert": bson.M{
			"first_seen": now,
			"stop":       false,
		},
		"$inc": bson.M{"message_count": 1},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, filter, update, opts); err != nil {
		slog.Error("Failed to save/update customer", "error", err, "chatID", chatID)
		return err
	}

	return nil
}

// GetCustomer returns the chat user record, or nil if unseen
func GetCustomer(ctx context.Context, chatID string) (*models.Customer, error) {
	collection := database.Collection("customers")

	var customer models.Customer
	err := collection.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &customer, nil
}

// UpdateCustomerStopStatus flips the human-handling flag. While stop is
// true the bot stays silent for the chat and only records messages.
func UpdateCustomerStopStatus(ctx context.Context, chatID string, stop bool) (*models.Customer, error) {
	collection := database.Collection("customers")

	filter := bson.M{"chat_id": chatID}
	update := bson.M{"$set": bson.M{"stop": stop, "last_seen": time.Now()}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var customer models.Customer
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&customer); err != nil {
		return nil, err
	}

	slog.Info("Customer stop status updated", "chatID", chatID, "stop", stop)
	return &customer, nil
}
