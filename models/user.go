package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OperatorRole represents the role of a dashboard user
type OperatorRole string

const (
	RoleAdmin    OperatorRole = "admin"
	RoleOperator OperatorRole = "operator"
)

// Operator represents a human agent with dashboard access
type Operator struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         OperatorRole       `bson:"role" json:"role"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	switch OperatorRole(role) {
	case RoleAdmin, RoleOperator:
		return true
	}
	return false
}

// Session represents an authenticated dashboard session
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID    string             `bson:"session_id" json:"session_id"`
	UserID       string             `bson:"user_id" json:"user_id"`
	Username     string             `bson:"username" json:"username"`
	Role         string             `bson:"role" json:"role"`
	IPAddress    string             `bson:"ip_address,omitempty" json:"-"`
	UserAgent    string             `bson:"user_agent,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"`
	ExpiresAt    time.Time          `bson:"expires_at" json:"expires_at"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
}
