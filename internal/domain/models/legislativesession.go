// internal/domain/models/legislativesession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Legislative session lifecycle statuses. Transitions are one-directional:
// draft -> active -> closed -> archived. Archiving is the only "deletion";
// session documents are never removed.
const (
	SessionDraft    = "draft"
	SessionActive   = "active"
	SessionClosed   = "closed"
	SessionArchived = "archived"
)

// sessionStatusRank orders statuses for transition validation.
var sessionStatusRank = map[string]int{
	SessionDraft:    0,
	SessionActive:   1,
	SessionClosed:   2,
	SessionArchived: 3,
}

// ValidSessionTransition reports whether a status change moves forward
// (or stays put) in the lifecycle. Unknown statuses are rejected.
func ValidSessionTransition(from, to string) bool {
	f, okF := sessionStatusRank[from]
	t, okT := sessionStatusRank[to]
	return okF && okT && t >= f
}

// LegislativeSession is a tracked legislative period for one jurisdiction.
// It is the tenant boundary of the application: bills, hearings, categories,
// and memberships all hang off a session via session_id.
type LegislativeSession struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`

	// Identifier is the human-readable external key, e.g. "CA-2025".
	// Globally unique.
	Identifier string `bson:"identifier" json:"identifier"`

	JurisdictionID primitive.ObjectID `bson:"jurisdiction_id" json:"jurisdiction_id"`
	StartDate      time.Time          `bson:"start_date" json:"start_date"`
	EndDate        *time.Time         `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Archived reports whether the session has reached its terminal status.
func (s LegislativeSession) Archived() bool {
	return s.Status == SessionArchived
}
