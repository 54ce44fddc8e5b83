// internal/app/store/audit/auditstore.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories.
const (
	CategoryAuth  = "auth"  // login, logout, signup
	CategoryAdmin = "admin" // membership changes, session lifecycle
)

// Event is one audit record. ActorID is who performed the action; UserID is
// who it was performed on (equal to ActorID for auth events).
type Event struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Category      string              `bson:"category"`
	EventType     string              `bson:"event_type"`
	Success       bool                `bson:"success"`
	ActorID       *primitive.ObjectID `bson:"actor_id,omitempty"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty"`
	SessionID     *primitive.ObjectID `bson:"session_id,omitempty"`
	IP            string              `bson:"ip,omitempty"`
	FailureReason string              `bson:"failure_reason,omitempty"`
	Details       map[string]string   `bson:"details,omitempty"`
	CreatedAt     time.Time           `bson:"created_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates the recency index used by the activity feed.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("by_session_recency"),
	})
	return err
}

// Insert records an event. CreatedAt is stamped here.
func (s *Store) Insert(ctx context.Context, event Event) error {
	event.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// ListRecent returns the newest events for a session, for the session
// activity panel.
func (s *Store) ListRecent(ctx context.Context, sessionID primitive.ObjectID, limit int64) ([]Event, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
