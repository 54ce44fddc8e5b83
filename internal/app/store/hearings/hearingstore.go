// internal/app/store/hearings/hearingstore.go
package hearingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/billtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no hearing matches the lookup.
var ErrNotFound = errors.New("hearing not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("hearings")}
}

// EnsureIndexes creates the schedule lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("by_session_date"),
		},
		{
			Keys:    bson.D{{Key: "bill_ids", Value: 1}},
			Options: options.Index().SetName("by_bill"),
		},
	})
	return err
}

// NewHearing carries the fields for scheduling a hearing.
type NewHearing struct {
	SessionID   primitive.ObjectID
	Title       string
	Date        time.Time
	Location    string
	Description string
	BillIDs     []primitive.ObjectID
}

// Create schedules a hearing. New hearings always start as scheduled.
func (s *Store) Create(ctx context.Context, in NewHearing) (*models.Hearing, error) {
	now := time.Now().UTC()
	h := models.Hearing{
		SessionID:   in.SessionID,
		Title:       in.Title,
		Date:        in.Date,
		Location:    in.Location,
		Description: in.Description,
		Status:      models.HearingScheduled,
		BillIDs:     in.BillIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := s.c.InsertOne(ctx, h)
	if err != nil {
		return nil, err
	}
	h.ID = res.InsertedID.(primitive.ObjectID)
	return &h, nil
}

// GetByID returns a hearing by ObjectID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hearing, error) {
	var h models.Hearing
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&h)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// HearingUpdate carries the editable hearing fields.
type HearingUpdate struct {
	Title       string
	Date        time.Time
	Location    string
	Description string
	Status      string
	BillIDs     []primitive.ObjectID
}

// Update changes the editable fields of a hearing.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, in HearingUpdate) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       in.Title,
		"date":        in.Date,
		"location":    in.Location,
		"description": in.Description,
		"status":      in.Status,
		"bill_ids":    in.BillIDs,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a hearing.
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

// ListBySession returns a session's hearings sorted by date ascending,
// optionally filtered by status.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID, status string) ([]models.Hearing, error) {
	filter := bson.M{"session_id": sessionID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Hearing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUpcoming returns the next scheduled hearings on or after now,
// limited for the dashboard panel.
func (s *Store) ListUpcoming(ctx context.Context, sessionID primitive.ObjectID, now time.Time, limit int64) ([]models.Hearing, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"session_id": sessionID,
		"date":       bson.M{"$gte": now},
		"status":     models.HearingScheduled,
	}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Hearing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByBill returns the hearings that have the bill on their agenda.
func (s *Store) ListByBill(ctx context.Context, billID primitive.ObjectID) ([]models.Hearing, error) {
	cur, err := s.c.Find(ctx, bson.M{"bill_ids": billID},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Hearing
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
