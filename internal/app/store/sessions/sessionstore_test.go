package sessionstore_test

import (
	"errors"
	"testing"
	"time"

	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/billtrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_MakesCreatorActiveAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	creator := f.CreateUser(ctx, "Session Creator", "creator@test.com", "admin")
	j := f.CreateJurisdiction(ctx, "California", "CA")

	// The creator is already an active member elsewhere; creating a new
	// session must switch their active flag to the new one.
	old := f.CreateSession(ctx, "CA-2024", j.ID)
	f.CreateMembership(ctx, creator.ID, old.ID, "viewer", true)

	store := sessionstore.New(db)
	session, err := store.Create(ctx, sessionstore.NewSession{
		Name:           "California 2025",
		Identifier:     "CA-2025",
		JurisdictionID: j.ID,
		StartDate:      time.Now().UTC(),
	}, creator.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if session.Status != models.SessionActive {
		t.Errorf("new session status: got %q, want %q", session.Status, models.SessionActive)
	}

	members := membershipstore.New(db)
	m, err := members.GetByUserAndSession(ctx, creator.ID, session.ID)
	if err != nil {
		t.Fatalf("creator has no membership in the new session: %v", err)
	}
	if m.Role != "admin" {
		t.Errorf("creator role: got %q, want admin", m.Role)
	}
	if !m.IsActive {
		t.Error("creator membership in the new session should be active")
	}

	oldM, err := members.GetByUserAndSession(ctx, creator.ID, old.ID)
	if err != nil {
		t.Fatalf("old membership lookup: %v", err)
	}
	if oldM.IsActive {
		t.Error("old membership should have been deactivated")
	}
}

func TestCreate_DuplicateIdentifier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := sessionstore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error: %v", err)
	}

	f := testutil.NewFixtures(t, db)
	creator := f.CreateUser(ctx, "Creator", "creator@test.com", "admin")
	j := f.CreateJurisdiction(ctx, "Texas", "TX")

	in := sessionstore.NewSession{
		Name:           "Texas 2025",
		Identifier:     "TX-2025",
		JurisdictionID: j.ID,
		StartDate:      time.Now().UTC(),
	}
	if _, err := store.Create(ctx, in, creator.ID); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}

	in.Name = "Texas 2025 Again"
	_, err := store.Create(ctx, in, creator.ID)
	if !errors.Is(err, sessionstore.ErrDuplicateIdentifier) {
		t.Errorf("second Create(): got %v, want ErrDuplicateIdentifier", err)
	}
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Oregon", "OR")
	session := f.CreateSession(ctx, "OR-2025", j.ID)

	store := sessionstore.New(db)

	if err := store.UpdateStatus(ctx, session.ID, models.SessionClosed); err != nil {
		t.Fatalf("active -> closed: %v", err)
	}

	err := store.UpdateStatus(ctx, session.ID, models.SessionActive)
	if !errors.Is(err, sessionstore.ErrInvalidTransition) {
		t.Errorf("closed -> active: got %v, want ErrInvalidTransition", err)
	}

	if err := store.Archive(ctx, session.ID); err != nil {
		t.Fatalf("closed -> archived: %v", err)
	}

	// Archiving an archived session stays put rather than erroring.
	if err := store.Archive(ctx, session.ID); err != nil {
		t.Errorf("archive twice: got %v, want nil", err)
	}

	got, err := store.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !got.Archived() {
		t.Errorf("final status: got %q, want archived", got.Status)
	}
}

func TestUpdate_ClearsEndDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Nevada", "NV")
	session := f.CreateSession(ctx, "NV-2025", j.ID)

	store := sessionstore.New(db)

	end := time.Now().UTC().AddDate(0, 6, 0)
	err := store.Update(ctx, session.ID, sessionstore.SessionUpdate{
		Name:      session.Name,
		StartDate: session.StartDate,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("Update() with end date: %v", err)
	}

	err = store.Update(ctx, session.ID, sessionstore.SessionUpdate{
		Name:      "Nevada Regular Session",
		StartDate: session.StartDate,
	})
	if err != nil {
		t.Fatalf("Update() clearing end date: %v", err)
	}

	got, err := store.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.EndDate != nil {
		t.Errorf("end date: got %v, want nil", got.EndDate)
	}
	if got.Name != "Nevada Regular Session" {
		t.Errorf("name: got %q", got.Name)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := sessionstore.New(db)
	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, sessionstore.ErrNotFound) {
		t.Errorf("GetByID(): got %v, want ErrNotFound", err)
	}
}
