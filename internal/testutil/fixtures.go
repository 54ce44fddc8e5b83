package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given global role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: "internal",
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test user with the global admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin")
}

// CreateJurisdiction creates a test jurisdiction.
func (f *Fixtures) CreateJurisdiction(ctx context.Context, name, code string) models.Jurisdiction {
	f.t.Helper()

	j := models.Jurisdiction{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Type:      models.JurisdictionState,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("jurisdictions").InsertOne(ctx, j); err != nil {
		f.t.Fatalf("failed to create test jurisdiction: %v", err)
	}
	return j
}

// CreateSession creates a test legislative session in the given jurisdiction.
// Identifier doubles as the name, e.g. "CA-2025".
func (f *Fixtures) CreateSession(ctx context.Context, identifier string, jurisdictionID primitive.ObjectID) models.LegislativeSession {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.LegislativeSession{
		ID:             primitive.NewObjectID(),
		Name:           identifier,
		NameCI:         text.Fold(identifier),
		Identifier:     identifier,
		JurisdictionID: jurisdictionID,
		StartDate:      now,
		Status:         models.SessionActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("legislative_sessions").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test session: %v", err)
	}
	return s
}

// CreateMembership links a user to a session with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, sessionID primitive.ObjectID, role string, active bool) models.Membership {
	f.t.Helper()

	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		IsActive:  active,
		JoinedAt:  time.Now().UTC(),
	}

	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateCategory creates a test category within a session.
func (f *Fixtures) CreateCategory(ctx context.Context, sessionID primitive.ObjectID, name, slug string) models.SessionCategory {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.SessionCategory{
		ID:        primitive.NewObjectID(),
		SessionID: sessionID,
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("session_categories").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test category: %v", err)
	}
	return c
}

// CreateBill creates a test bill within a session.
func (f *Fixtures) CreateBill(ctx context.Context, sessionID, jurisdictionID primitive.ObjectID, number, title string) models.Bill {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Bill{
		ID:             primitive.NewObjectID(),
		SessionID:      sessionID,
		JurisdictionID: jurisdictionID,
		BillNumber:     number,
		Title:          title,
		TitleCI:        text.Fold(title),
		Status:         models.BillIntroduced,
		Priority:       models.PriorityNormal,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("bills").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test bill: %v", err)
	}
	return b
}

// CreateHearing creates a test hearing within a session.
func (f *Fixtures) CreateHearing(ctx context.Context, sessionID primitive.ObjectID, title string, date time.Time) models.Hearing {
	f.t.Helper()

	now := time.Now().UTC()
	h := models.Hearing{
		ID:        primitive.NewObjectID(),
		SessionID: sessionID,
		Title:     title,
		Date:      date,
		Status:    models.HearingScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("hearings").InsertOne(ctx, h); err != nil {
		f.t.Fatalf("failed to create test hearing: %v", err)
	}
	return h
}
