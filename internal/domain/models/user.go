// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an authenticated actor.
//
// NOTE:
//   - Role here is the GLOBAL role tag ("admin" | "member"). It governs
//     system-wide capabilities only, such as creating a new legislative
//     session. Per-session privileges live on Membership, never here.
//   - Users are never hard-deleted; disable via Status instead.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"email_ci"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"` // empty for OAuth-only accounts
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // internal | google
	Role         string             `bson:"role" json:"role"`     // admin | member (global)
	Status       string             `bson:"status" json:"status"` // active | disabled

	// Preferred jurisdiction preselected in the bill upload wizard.
	DefaultJurisdictionID *primitive.ObjectID `bson:"default_jurisdiction_id,omitempty" json:"default_jurisdiction_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
