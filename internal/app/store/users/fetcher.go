// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so LoadSessionUser refreshes the user
// on every request. It also resolves the user's active legislative session,
// which the layout's session switcher displays.
type Fetcher struct {
	users       *mongo.Collection
	memberships *mongo.Collection
	sessions    *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users:       db.Collection("users"),
		memberships: db.Collection("memberships"),
		sessions:    db.Collection("legislative_sessions"),
	}
}

// FetchUser retrieves a user by ID. Returns nil if the user is not found,
// disabled, or on any error, which leaves the request unauthenticated.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"status":    1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}
	if u.Status == "disabled" {
		return nil
	}

	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}

	// Resolve the active session for the switcher. Failures here leave the
	// fields empty; the dashboard handles the no-selection case.
	var m models.Membership
	if err := f.memberships.FindOne(ctx, bson.M{"user_id": oid, "is_active": true}).Decode(&m); err == nil {
		su.ActiveSessionID = m.SessionID.Hex()

		var ls models.LegislativeSession
		nameProj := options.FindOne().SetProjection(bson.M{"name": 1})
		if err := f.sessions.FindOne(ctx, bson.M{"_id": m.SessionID}, nameProj).Decode(&ls); err == nil {
			su.ActiveSessionName = ls.Name
		}
	}

	return su
}
