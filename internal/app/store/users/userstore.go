// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/billtrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email is already registered")

	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email index and the name index used by
// member search.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email_ci"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("by_full_name_ci"),
		},
	})
	return err
}

// Create inserts a user. PasswordHash must already be hashed by the caller;
// this store never sees plaintext.
func (s *Store) Create(ctx context.Context, fullName, email, passwordHash, authMethod, role string) (*models.User, error) {
	now := time.Now().UTC()
	u := models.User{
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: passwordHash,
		AuthMethod:   authMethod,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := s.c.InsertOne(ctx, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return &u, nil
}

// GetByID returns a user by ObjectID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email (case-insensitive), or ErrNotFound.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetManyByIDs returns the users for the given IDs, keyed by ID.
func (s *Store) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	result := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		result[u.ID] = u
	}
	return result, cur.Err()
}

// UpdateProfile changes the user's display name and default jurisdiction.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName string, defaultJurisdictionID *primitive.ObjectID) error {
	set := bson.M{
		"full_name":    fullName,
		"full_name_ci": text.Fold(fullName),
		"updated_at":   time.Now().UTC(),
	}
	if defaultJurisdictionID != nil {
		set["default_jurisdiction_id"] = *defaultJurisdictionID
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetGlobalRoleByEmail promotes or demotes an account's global role
// ("admin" | "member"). Used at startup to bootstrap the first admin.
func (s *Store) SetGlobalRoleByEmail(ctx context.Context, email, role string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"email_ci": text.Fold(email)}, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus enables or disables an account ("active" | "disabled").
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
