// internal/app/store/sessions/sessionstore.go
package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/billtrack/internal/app/system/txn"
	"github.com/dalemusser/billtrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateIdentifier is returned when the session identifier
	// (e.g. "CA-2025") is already taken.
	ErrDuplicateIdentifier = errors.New("session identifier is already in use")

	// ErrNotFound is returned when no session matches the lookup.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidTransition is returned for a status change that would move
	// backwards in the draft -> active -> closed -> archived lifecycle.
	ErrInvalidTransition = errors.New("invalid session status transition")
)

type Store struct {
	c           *mongo.Collection
	memberships *mongo.Collection
	client      *mongo.Client
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("legislative_sessions"),
		memberships: db.Collection("memberships"),
		client:      db.Client(),
	}
}

// EnsureIndexes creates the unique identifier index and lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "identifier", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_identifier"),
		},
		{
			Keys:    bson.D{{Key: "jurisdiction_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_jurisdiction_status"),
		},
	})
	return err
}

// NewSession carries the fields for creating a legislative session.
type NewSession struct {
	Name           string
	Identifier     string
	JurisdictionID primitive.ObjectID
	StartDate      time.Time
	EndDate        *time.Time
	Description    string
}

// Create inserts the session and, in the same transaction, makes the creator
// an admin member with the new session selected as their active one. Their
// other memberships are deactivated so the single-active invariant holds.
func (s *Store) Create(ctx context.Context, in NewSession, creatorID primitive.ObjectID) (*models.LegislativeSession, error) {
	now := time.Now().UTC()
	session := models.LegislativeSession{
		ID:             primitive.NewObjectID(),
		Name:           in.Name,
		NameCI:         text.Fold(in.Name),
		Identifier:     in.Identifier,
		JurisdictionID: in.JurisdictionID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Status:         models.SessionActive,
		Description:    in.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, session); err != nil {
			if wafflemongo.IsDup(err) {
				return ErrDuplicateIdentifier
			}
			return err
		}

		if _, err := s.memberships.UpdateMany(ctx,
			bson.M{"user_id": creatorID, "is_active": true},
			bson.M{"$set": bson.M{"is_active": false}}); err != nil {
			return err
		}

		_, err := s.memberships.InsertOne(ctx, models.Membership{
			UserID:    creatorID,
			SessionID: session.ID,
			Role:      "admin",
			IsActive:  true,
			JoinedAt:  now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByID returns a session by ObjectID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.LegislativeSession, error) {
	var ls models.LegislativeSession
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ls)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ls, nil
}

// GetByIdentifier returns a session by its external key, or ErrNotFound.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*models.LegislativeSession, error) {
	var ls models.LegislativeSession
	err := s.c.FindOne(ctx, bson.M{"identifier": identifier}).Decode(&ls)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ls, nil
}

// GetManyByIDs returns the sessions for the given IDs, keyed by ID.
func (s *Store) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.LegislativeSession, error) {
	result := make(map[primitive.ObjectID]models.LegislativeSession, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var ls models.LegislativeSession
		if err := cur.Decode(&ls); err != nil {
			return nil, err
		}
		result[ls.ID] = ls
	}
	return result, cur.Err()
}

// SessionUpdate carries the editable session fields.
type SessionUpdate struct {
	Name        string
	StartDate   time.Time
	EndDate     *time.Time
	Description string
}

// Update changes the editable fields of a session. Identifier and
// jurisdiction are immutable after creation.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, in SessionUpdate) error {
	set := bson.M{
		"name":        in.Name,
		"name_ci":     text.Fold(in.Name),
		"start_date":  in.StartDate,
		"description": in.Description,
		"updated_at":  time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if in.EndDate != nil {
		set["end_date"] = *in.EndDate
	} else {
		update["$unset"] = bson.M{"end_date": ""}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus advances the session lifecycle. Backwards transitions return
// ErrInvalidTransition; the status check and write happen atomically via a
// filtered update so a concurrent change cannot sneak a regression through.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, to string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !models.ValidSessionTransition(current.Status, to) {
		return ErrInvalidTransition
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": current.Status},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Status moved under us; retry from the caller if it matters.
		return ErrInvalidTransition
	}
	return nil
}

// Archive moves the session to its terminal status. Sessions are never
// deleted; archived data stays readable.
func (s *Store) Archive(ctx context.Context, id primitive.ObjectID) error {
	return s.UpdateStatus(ctx, id, models.SessionArchived)
}

// ListByIDs returns sessions for the IDs sorted by start date descending,
// for the dashboard's session list.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.LegislativeSession, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LegislativeSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
