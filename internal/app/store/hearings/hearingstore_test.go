package hearingstore_test

import (
	"errors"
	"testing"
	"time"

	hearingstore "github.com/dalemusser/billtrack/internal/app/store/hearings"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/billtrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_AlwaysStartsScheduled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "California", "CA")
	session := f.CreateSession(ctx, "CA-2025", j.ID)

	store := hearingstore.New(db)
	h, err := store.Create(ctx, hearingstore.NewHearing{
		SessionID: session.ID,
		Title:     "Budget Committee Hearing",
		Date:      time.Now().UTC().Add(48 * time.Hour),
		Location:  "Room 4202",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if h.Status != models.HearingScheduled {
		t.Errorf("status: got %q, want %q", h.Status, models.HearingScheduled)
	}
}

func TestListUpcoming_SkipsPastAndNonScheduled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Texas", "TX")
	session := f.CreateSession(ctx, "TX-2025", j.ID)

	now := time.Now().UTC()
	f.CreateHearing(ctx, session.ID, "Past Hearing", now.Add(-24*time.Hour))
	upcoming := f.CreateHearing(ctx, session.ID, "Tomorrow", now.Add(24*time.Hour))
	later := f.CreateHearing(ctx, session.ID, "Next Week", now.Add(7*24*time.Hour))

	store := hearingstore.New(db)

	// A cancelled future hearing is not upcoming.
	cancelled := f.CreateHearing(ctx, session.ID, "Cancelled", now.Add(48*time.Hour))
	err := store.Update(ctx, cancelled.ID, hearingstore.HearingUpdate{
		Title:  cancelled.Title,
		Date:   cancelled.Date,
		Status: models.HearingCancelled,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := store.ListUpcoming(ctx, session.ID, now, 5)
	if err != nil {
		t.Fatalf("ListUpcoming() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("upcoming count: got %d, want 2", len(got))
	}
	if got[0].ID != upcoming.ID || got[1].ID != later.ID {
		t.Errorf("upcoming order: got %q, %q", got[0].Title, got[1].Title)
	}
}

func TestListByBill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Oregon", "OR")
	session := f.CreateSession(ctx, "OR-2025", j.ID)
	bill := f.CreateBill(ctx, session.ID, j.ID, "SB 5", "Forestry")

	store := hearingstore.New(db)
	h, err := store.Create(ctx, hearingstore.NewHearing{
		SessionID: session.ID,
		Title:     "Forestry Hearing",
		Date:      time.Now().UTC().Add(24 * time.Hour),
		BillIDs:   []primitive.ObjectID{bill.ID},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	f.CreateHearing(ctx, session.ID, "Unrelated Hearing", time.Now().UTC().Add(24*time.Hour))

	got, err := store.ListByBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("ListByBill() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != h.ID {
		t.Errorf("ListByBill(): got %d hearings", len(got))
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Utah", "UT")
	session := f.CreateSession(ctx, "UT-2025", j.ID)
	h := f.CreateHearing(ctx, session.ID, "Doomed Hearing", time.Now().UTC())

	store := hearingstore.New(db)
	if err := store.Delete(ctx, h.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.GetByID(ctx, h.ID); !errors.Is(err, hearingstore.ErrNotFound) {
		t.Errorf("GetByID() after delete: got %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, h.ID); !errors.Is(err, hearingstore.ErrNotFound) {
		t.Errorf("second Delete(): got %v, want ErrNotFound", err)
	}
}
