// internal/domain/models/jurisdiction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Jurisdiction types.
const (
	JurisdictionState   = "state"
	JurisdictionFederal = "federal"
)

// Jurisdiction is a legislature whose sessions and bills are tracked,
// e.g. California ("CA") or the federal Congress ("US").
// The collection is seeded at startup with all 50 states plus Federal.
type Jurisdiction struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"name_ci"`
	Type    string             `bson:"type" json:"type"` // state | federal
	Code    string             `bson:"code" json:"code"` // unique: "CA", "NY", "US", ...
	Website string             `bson:"website,omitempty" json:"website,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
