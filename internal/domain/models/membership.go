// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership is the authoritative join between users and legislative
// sessions. Exactly one document per (user_id, session_id); role is a scalar
// ("viewer"|"contributor"|"manager"|"admin") and role changes update the doc
// in place.
//
// IsActive marks the user's currently selected session (at most one true
// across ALL of a user's memberships). It drives the default session shown in
// the UI and nothing else: authorization never consults it.
type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	SessionID primitive.ObjectID `bson:"session_id" json:"session_id"`
	Role      string             `bson:"role" json:"role"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	JoinedAt  time.Time          `bson:"joined_at" json:"joined_at"`
}
