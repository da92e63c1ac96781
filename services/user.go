package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"crypto-support-bot/models"
)

// HashPassword hashes a plain-text password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CreateOperator creates a new dashboard user
func CreateOperator(ctx context.Context, username, password string, role models.OperatorRole) (*models.Operator, error) {
	collection := database.Collection("operators")

	existing := collection.FindOne(ctx, bson.M{"username": username})
	if existing.Err() != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("operator %q already exists", username)
	}

	if !models.IsValidRole(string(role)) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	operator := &models.Operator{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := collection.InsertOne(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	slog.Info("Operator created",
		"operatorID", operator.ID.Hex(),
		"username", operator.Username,
		"role", operator.Role,
	)

	return operator, nil
}

// GetOperatorByUsername retrieves an operator by username
func GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	collection := database.Collection("operators")

	var operator models.Operator
	err := collection.FindOne(ctx, bson.M{"username": username}).Decode(&operator)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("operator not found")
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	return &operator, nil
}

// GetOperatorByID retrieves an operator by their ObjectID
func GetOperatorByID(ctx context.Context, operatorID string) (*models.Operator, error) {
	collection := database.Collection("operators")

	objectID, err := primitive.ObjectIDFromHex(operatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid operator ID format: %w", err)
	}

	var operator models.Operator
	if err := collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&operator); err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	return &operator, nil
}

// UpdateOperatorLastLogin stamps the operator's last login time
func UpdateOperatorLastLogin(ctx context.Context, operatorID string) error {
	collection := database.Collection("operators")

	objectID, err := primitive.ObjectIDFromHex(operatorID)
	if err != nil {
		return fmt.Errorf("invalid operator ID format: %w", err)
	}

	_, err = collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

// EnsureDefaultOperator creates the admin account from configuration on
// first start. No-op when any operator exists or no password is
// configured.
func EnsureDefaultOperator(ctx context.Context, username, password string) error {
	if password == "" {
		slog.Warn("ADMIN_PASSWORD not set, skipping default operator creation")
		return nil
	}

	collection := database.Collection("operators")
	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = CreateOperator(ctx, username, password, models.RoleAdmin)
	return err
}
