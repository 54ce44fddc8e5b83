// internal/domain/models/category.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionCategory is a per-session bill category (e.g. "Housing",
// "Public Safety"). Slug is unique within its session.
type SessionCategory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   primitive.ObjectID `bson:"session_id" json:"session_id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Color       string             `bson:"color,omitempty" json:"color,omitempty"` // "#rrggbb"
	Order       int                `bson:"order" json:"order"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
