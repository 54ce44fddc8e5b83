package categorystore_test

import (
	"errors"
	"testing"

	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	categorystore "github.com/dalemusser/billtrack/internal/app/store/categories"
	"github.com/dalemusser/billtrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Education", "education"},
		{"Health & Safety", "health-safety"},
		{"  K-12 Funding  ", "k-12-funding"},
		{"Taxes!!!", "taxes"},
	}
	for _, tc := range cases {
		if got := categorystore.Slugify(tc.name); got != tc.want {
			t.Errorf("Slugify(%q): got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCreate_DuplicateSlugPerSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := categorystore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error: %v", err)
	}

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "California", "CA")
	s1 := f.CreateSession(ctx, "CA-2025", j.ID)
	s2 := f.CreateSession(ctx, "CA-2026", j.ID)

	if _, err := store.Create(ctx, s1.ID, "Education", "", "", "", 0); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}

	_, err := store.Create(ctx, s1.ID, "Education", "", "", "", 0)
	if !errors.Is(err, categorystore.ErrDuplicateSlug) {
		t.Errorf("same session duplicate: got %v, want ErrDuplicateSlug", err)
	}

	// The slug is only unique within a session.
	if _, err := store.Create(ctx, s2.ID, "Education", "", "", "", 0); err != nil {
		t.Errorf("other session with same slug: got %v, want nil", err)
	}
}

func TestDelete_StripsCategoryFromBills(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Texas", "TX")
	session := f.CreateSession(ctx, "TX-2025", j.ID)

	store := categorystore.New(db)
	cat, err := store.Create(ctx, session.ID, "Transport", "", "", "", 0)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	bills := billstore.New(db)
	bill := f.CreateBill(ctx, session.ID, j.ID, "HB 1", "Highway Funding")
	err = bills.Update(ctx, bill.ID, billstore.BillUpdate{
		Title:       bill.Title,
		Status:      bill.Status,
		Priority:    bill.Priority,
		CategoryIDs: []primitive.ObjectID{cat.ID},
	})
	if err != nil {
		t.Fatalf("bill Update() error: %v", err)
	}

	n, err := store.CountBills(ctx, cat.ID)
	if err != nil || n != 1 {
		t.Fatalf("CountBills() before delete: got %d, %v; want 1", n, err)
	}

	if err := store.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := store.GetByID(ctx, cat.ID); !errors.Is(err, categorystore.ErrNotFound) {
		t.Errorf("GetByID() after delete: got %v, want ErrNotFound", err)
	}

	got, err := bills.GetByID(ctx, bill.ID)
	if err != nil {
		t.Fatalf("bill GetByID() error: %v", err)
	}
	if len(got.CategoryIDs) != 0 {
		t.Errorf("bill still references deleted category: %v", got.CategoryIDs)
	}
}
