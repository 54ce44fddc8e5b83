// internal/app/store/jurisdictions/jurisdictionstore.go
package jurisdictionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no jurisdiction matches the lookup.
var ErrNotFound = errors.New("jurisdiction not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("jurisdictions")}
}

// EnsureIndexes creates the unique code index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_code"),
	})
	return err
}

// GetByID returns a jurisdiction by ObjectID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Jurisdiction, error) {
	var j models.Jurisdiction
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// GetByCode returns a jurisdiction by its code ("CA", "US", ...), or ErrNotFound.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Jurisdiction, error) {
	var j models.Jurisdiction
	err := s.c.FindOne(ctx, bson.M{"code": code}).Decode(&j)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// List returns all jurisdictions sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Jurisdiction, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Jurisdiction
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// seedEntry is one row of the default jurisdiction set.
type seedEntry struct {
	name string
	code string
	typ  string
}

var defaultJurisdictions = []seedEntry{
	{"Alabama", "AL", models.JurisdictionState},
	{"Alaska", "AK", models.JurisdictionState},
	{"Arizona", "AZ", models.JurisdictionState},
	{"Arkansas", "AR", models.JurisdictionState},
	{"California", "CA", models.JurisdictionState},
	{"Colorado", "CO", models.JurisdictionState},
	{"Connecticut", "CT", models.JurisdictionState},
	{"Delaware", "DE", models.JurisdictionState},
	{"Florida", "FL", models.JurisdictionState},
	{"Georgia", "GA", models.JurisdictionState},
	{"Hawaii", "HI", models.JurisdictionState},
	{"Idaho", "ID", models.JurisdictionState},
	{"Illinois", "IL", models.JurisdictionState},
	{"Indiana", "IN", models.JurisdictionState},
	{"Iowa", "IA", models.JurisdictionState},
	{"Kansas", "KS", models.JurisdictionState},
	{"Kentucky", "KY", models.JurisdictionState},
	{"Louisiana", "LA", models.JurisdictionState},
	{"Maine", "ME", models.JurisdictionState},
	{"Maryland", "MD", models.JurisdictionState},
	{"Massachusetts", "MA", models.JurisdictionState},
	{"Michigan", "MI", models.JurisdictionState},
	{"Minnesota", "MN", models.JurisdictionState},
	{"Mississippi", "MS", models.JurisdictionState},
	{"Missouri", "MO", models.JurisdictionState},
	{"Montana", "MT", models.JurisdictionState},
	{"Nebraska", "NE", models.JurisdictionState},
	{"Nevada", "NV", models.JurisdictionState},
	{"New Hampshire", "NH", models.JurisdictionState},
	{"New Jersey", "NJ", models.JurisdictionState},
	{"New Mexico", "NM", models.JurisdictionState},
	{"New York", "NY", models.JurisdictionState},
	{"North Carolina", "NC", models.JurisdictionState},
	{"North Dakota", "ND", models.JurisdictionState},
	{"Ohio", "OH", models.JurisdictionState},
	{"Oklahoma", "OK", models.JurisdictionState},
	{"Oregon", "OR", models.JurisdictionState},
	{"Pennsylvania", "PA", models.JurisdictionState},
	{"Rhode Island", "RI", models.JurisdictionState},
	{"South Carolina", "SC", models.JurisdictionState},
	{"South Dakota", "SD", models.JurisdictionState},
	{"Tennessee", "TN", models.JurisdictionState},
	{"Texas", "TX", models.JurisdictionState},
	{"Utah", "UT", models.JurisdictionState},
	{"Vermont", "VT", models.JurisdictionState},
	{"Virginia", "VA", models.JurisdictionState},
	{"Washington", "WA", models.JurisdictionState},
	{"West Virginia", "WV", models.JurisdictionState},
	{"Wisconsin", "WI", models.JurisdictionState},
	{"Wyoming", "WY", models.JurisdictionState},
	{"Federal", "US", models.JurisdictionFederal},
}

// EnsureDefaults seeds the 50 US states plus Federal. Upserts keyed on code,
// so reruns at startup are harmless and never duplicate rows.
func (s *Store) EnsureDefaults(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	seeded := 0
	for _, e := range defaultJurisdictions {
		res, err := s.c.UpdateOne(ctx,
			bson.M{"code": e.code},
			bson.M{"$setOnInsert": bson.M{
				"name":       e.name,
				"name_ci":    text.Fold(e.name),
				"type":       e.typ,
				"code":       e.code,
				"created_at": now,
			}},
			options.Update().SetUpsert(true))
		if err != nil {
			return seeded, err
		}
		if res.UpsertedCount > 0 {
			seeded++
		}
	}
	return seeded, nil
}
