// internal/domain/models/hearing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hearing statuses.
const (
	HearingScheduled  = "scheduled"
	HearingInProgress = "in_progress"
	HearingCompleted  = "completed"
	HearingCancelled  = "cancelled"
	HearingPostponed  = "postponed"
)

// HearingStatuses lists every valid hearing status.
var HearingStatuses = []string{
	HearingScheduled, HearingInProgress, HearingCompleted,
	HearingCancelled, HearingPostponed,
}

// ValidHearingStatus reports whether s is a known hearing status.
func ValidHearingStatus(s string) bool {
	for _, v := range HearingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Hearing is a scheduled committee or floor hearing within a session.
// BillIDs links the bills on the hearing's agenda.
type Hearing struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID primitive.ObjectID `bson:"session_id" json:"session_id"`

	Title       string    `bson:"title" json:"title"`
	Date        time.Time `bson:"date" json:"date"`
	Location    string    `bson:"location,omitempty" json:"location,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Status      string    `bson:"status" json:"status"`

	BillIDs []primitive.ObjectID `bson:"bill_ids,omitempty" json:"bill_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
