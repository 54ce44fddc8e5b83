// internal/domain/models/bill.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bill statuses follow the legislative pipeline.
const (
	BillIntroduced      = "introduced"
	BillInCommittee     = "in_committee"
	BillPassedCommittee = "passed_committee"
	BillOnFloor         = "on_floor"
	BillPassed          = "passed"
	BillVetoed          = "vetoed"
	BillEnacted         = "enacted"
	BillFailed          = "failed"
	BillWithdrawn       = "withdrawn"
)

// Bill priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// BillStatuses lists every valid bill status, in pipeline order.
var BillStatuses = []string{
	BillIntroduced, BillInCommittee, BillPassedCommittee, BillOnFloor,
	BillPassed, BillVetoed, BillEnacted, BillFailed, BillWithdrawn,
}

// BillPriorities lists every valid priority, ascending.
var BillPriorities = []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// ValidBillStatus reports whether s is a known bill status.
func ValidBillStatus(s string) bool {
	for _, v := range BillStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidBillPriority reports whether p is a known priority.
func ValidBillPriority(p string) bool {
	for _, v := range BillPriorities {
		if v == p {
			return true
		}
	}
	return false
}

// Bill is a tracked piece of legislation within a session. The uploaded
// source document lives in object storage under DocumentKey; FullText holds
// the text extracted from it at upload time (best effort).
type Bill struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID      primitive.ObjectID `bson:"session_id" json:"session_id"`
	JurisdictionID primitive.ObjectID `bson:"jurisdiction_id" json:"jurisdiction_id"`

	BillNumber string `bson:"bill_number" json:"bill_number"` // unique within session
	Title      string `bson:"title" json:"title"`
	TitleCI    string `bson:"title_ci" json:"title_ci"`
	Summary    string `bson:"summary,omitempty" json:"summary,omitempty"`
	FullText   string `bson:"full_text,omitempty" json:"-"`

	Status   string `bson:"status" json:"status"`
	Priority string `bson:"priority" json:"priority"`

	PrimarySponsor string   `bson:"primary_sponsor,omitempty" json:"primary_sponsor,omitempty"`
	Sponsors       []string `bson:"sponsors,omitempty" json:"sponsors,omitempty"`
	Committees     []string `bson:"committees,omitempty" json:"committees,omitempty"`
	Topics         []string `bson:"topics,omitempty" json:"topics,omitempty"`

	CategoryIDs []primitive.ObjectID `bson:"category_ids,omitempty" json:"category_ids,omitempty"`

	// Staff member this bill is assigned to, if any.
	AssignedTo *primitive.ObjectID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`

	IntroducedDate *time.Time `bson:"introduced_date,omitempty" json:"introduced_date,omitempty"`

	// Uploaded document.
	DocumentKey  string `bson:"document_key,omitempty" json:"document_key,omitempty"`
	DocumentName string `bson:"document_name,omitempty" json:"document_name,omitempty"`
	DocumentType string `bson:"document_type,omitempty" json:"document_type,omitempty"` // MIME type
	DocumentSize int64  `bson:"document_size,omitempty" json:"document_size,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasDocument reports whether a source document was uploaded for this bill.
func (b Bill) HasDocument() bool {
	return b.DocumentKey != ""
}
