// internal/app/store/bills/billstore.go
package billstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/billtrack/internal/app/system/paging"
	"github.com/dalemusser/billtrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateBillNumber is returned when the bill number is already
	// tracked in the session.
	ErrDuplicateBillNumber = errors.New("bill number already exists in this session")

	// ErrNotFound is returned when no bill matches the lookup.
	ErrNotFound = errors.New("bill not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bills")}
}

// EnsureIndexes creates the per-session unique bill number index and the
// indexes behind list filtering and paging.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "bill_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_session_bill_number"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("by_session_title"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_session_status"),
		},
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}},
			Options: options.Index().SetName("by_assignee").SetSparse(true),
		},
	})
	return err
}

// NewBill carries the fields for creating a bill.
type NewBill struct {
	SessionID      primitive.ObjectID
	JurisdictionID primitive.ObjectID
	BillNumber     string
	Title          string
	Summary        string
	Status         string
	Priority       string
	PrimarySponsor string
	Sponsors       []string
	Committees     []string
	Topics         []string
	CategoryIDs    []primitive.ObjectID
	AssignedTo     *primitive.ObjectID
	IntroducedDate *time.Time
}

// Create inserts a bill. Status defaults to introduced and priority to
// normal when left empty.
func (s *Store) Create(ctx context.Context, in NewBill) (*models.Bill, error) {
	if in.Status == "" {
		in.Status = models.BillIntroduced
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}

	now := time.Now().UTC()
	b := models.Bill{
		SessionID:      in.SessionID,
		JurisdictionID: in.JurisdictionID,
		BillNumber:     in.BillNumber,
		Title:          in.Title,
		TitleCI:        text.Fold(in.Title),
		Summary:        in.Summary,
		Status:         in.Status,
		Priority:       in.Priority,
		PrimarySponsor: in.PrimarySponsor,
		Sponsors:       in.Sponsors,
		Committees:     in.Committees,
		Topics:         in.Topics,
		CategoryIDs:    in.CategoryIDs,
		AssignedTo:     in.AssignedTo,
		IntroducedDate: in.IntroducedDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	res, err := s.c.InsertOne(ctx, b)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateBillNumber
		}
		return nil, err
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return &b, nil
}

// GetByID returns a bill by ObjectID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	var b models.Bill
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BillUpdate carries the editable bill fields.
type BillUpdate struct {
	Title          string
	Summary        string
	Status         string
	Priority       string
	PrimarySponsor string
	Sponsors       []string
	Committees     []string
	Topics         []string
	CategoryIDs    []primitive.ObjectID
	AssignedTo     *primitive.ObjectID
	IntroducedDate *time.Time
}

// Update changes the editable fields of a bill. BillNumber is immutable.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, in BillUpdate) error {
	set := bson.M{
		"title":           in.Title,
		"title_ci":        text.Fold(in.Title),
		"summary":         in.Summary,
		"status":          in.Status,
		"priority":        in.Priority,
		"primary_sponsor": in.PrimarySponsor,
		"sponsors":        in.Sponsors,
		"committees":      in.Committees,
		"topics":          in.Topics,
		"category_ids":    in.CategoryIDs,
		"updated_at":      time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	unset := bson.M{}
	if in.AssignedTo != nil {
		set["assigned_to"] = *in.AssignedTo
	} else {
		unset["assigned_to"] = ""
	}
	if in.IntroducedDate != nil {
		set["introduced_date"] = *in.IntroducedDate
	} else {
		unset["introduced_date"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
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

// SetDocument records an uploaded source document and its extracted text.
// Extraction is best effort, so fullText may be empty.
func (s *Store) SetDocument(ctx context.Context, id primitive.ObjectID, key, name, contentType string, size int64, fullText string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"document_key":  key,
		"document_name": name,
		"document_type": contentType,
		"document_size": size,
		"full_text":     fullText,
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

// Delete removes a bill document.
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

// ListFilter narrows the bill list. SessionID is required; the rest are
// optional.
type ListFilter struct {
	SessionID  primitive.ObjectID
	Status     string
	Priority   string
	CategoryID *primitive.ObjectID
	AssignedTo *primitive.ObjectID
	Search     string // prefix match on folded title or exact bill number
}

func (f ListFilter) clauses() []bson.M {
	clauses := []bson.M{{"session_id": f.SessionID}}
	if f.Status != "" {
		clauses = append(clauses, bson.M{"status": f.Status})
	}
	if f.Priority != "" {
		clauses = append(clauses, bson.M{"priority": f.Priority})
	}
	if f.CategoryID != nil {
		clauses = append(clauses, bson.M{"category_ids": *f.CategoryID})
	}
	if f.AssignedTo != nil {
		clauses = append(clauses, bson.M{"assigned_to": *f.AssignedTo})
	}
	if f.Search != "" {
		q := text.Fold(f.Search)
		hi := q + "\uffff"
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"title_ci": bson.M{"$gte": q, "$lt": hi}},
			{"bill_number": f.Search},
		}})
	}
	return clauses
}

// List returns one page of bills matching the filter, keyset-paged on
// title_ci. Rows arrive in display order regardless of paging direction.
func (s *Store) List(ctx context.Context, filter ListFilter, cfg paging.KeysetConfig) ([]models.Bill, error) {
	clauses := filter.clauses()
	if ks := cfg.KeysetWindow("title_ci"); ks != nil {
		clauses = append(clauses, ks)
	}

	find := options.Find()
	cfg.ApplyToFind(find, "title_ci")

	cur, err := s.c.Find(ctx, bson.M{"$and": clauses}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var bills []models.Bill
	if err := cur.All(ctx, &bills); err != nil {
		return nil, err
	}
	if cfg.Direction == paging.Backward {
		paging.Reverse(bills)
	}
	return bills, nil
}

// Count returns the number of bills matching the filter.
func (s *Store) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"$and": filter.clauses()})
}

// CountByStatus returns per-status bill counts for a session, for the
// dashboard summary.
func (s *Store) CountByStatus(ctx context.Context, sessionID primitive.ObjectID) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"session_id": sessionID}},
		{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.N
	}
	return result, cur.Err()
}

// ListByIDs returns the bills for the given IDs sorted by bill number,
// for hearing agendas.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Bill, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "bill_number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var bills []models.Bill
	if err := cur.All(ctx, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}
