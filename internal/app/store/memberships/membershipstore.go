// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/billtrack/internal/app/system/txn"
	"github.com/dalemusser/billtrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateMembership is returned when a membership already exists for
	// the (user, session) pair. Backed by the unique compound index, so
	// concurrent creates cannot slip through.
	ErrDuplicateMembership = errors.New("user is already a member of this session")

	// ErrNotFound is returned when no membership matches the lookup.
	ErrNotFound = errors.New("membership not found")

	// ErrNoMembership is returned by SwitchActive when the user has no
	// membership in the target session. Distinct from ErrNotFound so callers
	// can tell a missing document apart from a denied switch.
	ErrNoMembership = errors.New("user has no membership in that session")

	errBadRole = errors.New(`role must be "viewer", "contributor", "manager", or "admin"`)
)

// Store persists the user/session membership join. One document per
// (user_id, session_id), enforced by a unique index.
type Store struct {
	c      *mongo.Collection
	client *mongo.Client
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("memberships"),
		client: db.Client(),
	}
}

func validRole(role string) bool {
	switch role {
	case "viewer", "contributor", "manager", "admin":
		return true
	}
	return false
}

// EnsureIndexes creates the unique (user_id, session_id) index plus the
// lookup indexes used by the member and dashboard screens.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_session"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetName("by_session"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("by_user_active"),
		},
	})
	return err
}

// Create inserts a membership. Active controls whether the new session
// becomes the user's selected one (true for a session's creator, false for
// invited members). The unique index converts a concurrent duplicate insert
// into ErrDuplicateMembership.
func (s *Store) Create(ctx context.Context, userID, sessionID primitive.ObjectID, role string, active bool) (*models.Membership, error) {
	if !validRole(role) {
		return nil, errBadRole
	}

	m := models.Membership{
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		IsActive:  active,
		JoinedAt:  time.Now().UTC(),
	}
	res, err := s.c.InsertOne(ctx, m)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateMembership
		}
		return nil, err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return &m, nil
}

// GetByUserAndSession returns the membership for the pair, or ErrNotFound.
func (s *Store) GetByUserAndSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "session_id": sessionID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID returns a membership by its document ID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RoleInSession returns the stored role for (user, session), with ok=false
// when no membership exists. The is_active flag is deliberately not part of
// the query: an inactive membership still confers its role.
func (s *Store) RoleInSession(ctx context.Context, userID, sessionID primitive.ObjectID) (string, bool, error) {
	m, err := s.GetByUserAndSession(ctx, userID, sessionID)
	if err == ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m.Role, true, nil
}

// ActiveForUser returns the membership the user has marked active, or
// ErrNotFound when none is selected.
func (s *Store) ActiveForUser(ctx context.Context, userID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "is_active": true}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByUser returns all of a user's memberships, most recently joined first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListBySession returns all memberships in a session, most recently joined
// first, matching ListByUser.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// MemberDetail is a membership joined with the member's user record,
// for the session members screen.
type MemberDetail struct {
	models.Membership `bson:",inline"`
	UserName          string `bson:"user_name"`
	UserEmail         string `bson:"user_email"`
}

// ListBySessionWithUsers returns session memberships enriched with each
// member's name and email, most recently joined first.
func (s *Store) ListBySessionWithUsers(ctx context.Context, sessionID primitive.ObjectID) ([]MemberDetail, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"session_id": sessionID}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}},
		{"$unwind": "$user"},
		{"$addFields": bson.M{
			"user_name":  "$user.full_name",
			"user_email": "$user.email",
		}},
		{"$project": bson.M{"user": 0}},
		{"$sort": bson.M{"joined_at": -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []MemberDetail
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateRole changes a member's role. The update touches only the role
// field; is_active is untouched.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !validRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActiveFlag sets the is_active flag on one membership. Low-level
// primitive: it does not touch the user's other memberships, so callers that
// need the single-active invariant go through SwitchActive.
func (s *Store) SetActiveFlag(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SwitchActive makes sessionID the user's selected session: the target
// membership is verified, every other membership of the user is deactivated,
// then the target activated, inside a transaction so a concurrent reader
// never observes two active rows. Returns ErrNoMembership when the user has
// no membership in the target session.
func (s *Store) SwitchActive(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	return txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		m, err := s.GetByUserAndSession(ctx, userID, sessionID)
		if err == ErrNotFound {
			return ErrNoMembership
		}
		if err != nil {
			return err
		}
		_, err = s.c.UpdateMany(ctx,
			bson.M{"user_id": userID, "_id": bson.M{"$ne": m.ID}},
			bson.M{"$set": bson.M{"is_active": false}})
		if err != nil {
			return err
		}
		return s.SetActiveFlag(ctx, m.ID, true)
	})
}

// Delete removes a membership document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBySession returns the member count for a session, optionally filtered
// by role (empty role counts everyone).
func (s *Store) CountBySession(ctx context.Context, sessionID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"session_id": sessionID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}
