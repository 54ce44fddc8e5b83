// internal/app/store/categories/categorystore.go
package categorystore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/billtrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateSlug is returned when the slug is already used by another
	// category in the same session.
	ErrDuplicateSlug = errors.New("category slug is already in use in this session")

	// ErrNotFound is returned when no category matches the lookup.
	ErrNotFound = errors.New("category not found")
)

type Store struct {
	c     *mongo.Collection
	bills *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("session_categories"),
		bills: db.Collection("bills"),
	}
}

// EnsureIndexes creates the per-session unique slug index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_session_slug"),
	})
	return err
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a category name:
// lowercased, non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	slug := slugCleanup.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Create inserts a category. Slug defaults to Slugify(name) when empty.
func (s *Store) Create(ctx context.Context, sessionID primitive.ObjectID, name, slug, description, color string, order int) (*models.SessionCategory, error) {
	if slug == "" {
		slug = Slugify(name)
	}
	now := time.Now().UTC()
	c := models.SessionCategory{
		SessionID:   sessionID,
		Name:        name,
		Slug:        slug,
		Description: description,
		Color:       color,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := s.c.InsertOne(ctx, c)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return &c, nil
}

// GetByID returns a category by ObjectID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SessionCategory, error) {
	var c models.SessionCategory
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListBySession returns a session's categories ordered by their display
// order, then name.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.SessionCategory, error) {
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SessionCategory
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a category's fields. Slug stays stable once created so
// bookmarked filter URLs keep working.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description, color string, order int) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"description": description,
		"color":       color,
		"order":       order,
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

// Delete removes a category and strips it from every bill that references
// it. Bills themselves are untouched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.bills.UpdateMany(ctx,
		bson.M{"category_ids": id},
		bson.M{"$pull": bson.M{"category_ids": id}})
	return err
}

// CountBills returns how many bills reference the category, for the
// delete-confirmation screen.
func (s *Store) CountBills(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return s.bills.CountDocuments(ctx, bson.M{"category_ids": id})
}
