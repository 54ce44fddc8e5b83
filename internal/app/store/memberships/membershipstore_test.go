package membershipstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	"github.com/dalemusser/billtrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)

	m, err := store.Create(ctx, user.ID, session.ID, "contributor", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.Role != "contributor" {
		t.Errorf("Role: got %q, want %q", m.Role, "contributor")
	}
	if m.IsActive {
		t.Error("invited membership should not be active")
	}

	count, err := db.Collection("memberships").CountDocuments(ctx, bson.M{
		"user_id":    user.ID,
		"session_id": session.ID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 membership, got %d", count)
	}
}

func TestStore_Create_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)

	if _, err := store.Create(ctx, user.ID, session.ID, "owner", false); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)

	if _, err := store.Create(ctx, user.ID, session.ID, "viewer", false); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Second insert for the same pair must hit the unique index, even with
	// a different role.
	_, err := store.Create(ctx, user.ID, session.ID, "manager", false)
	if !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Fatalf("err = %v, want ErrDuplicateMembership", err)
	}

	count, _ := db.Collection("memberships").CountDocuments(ctx, bson.M{"user_id": user.ID})
	if count != 1 {
		t.Errorf("expected 1 membership after duplicate insert, got %d", count)
	}
}

// An inactive membership must still resolve its role: is_active selects the
// default session in the UI and has no bearing on permissions.
func TestStore_RoleInSession_IgnoresActiveFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "New York", "NY")
	session := fixtures.CreateSession(ctx, "NY-2025", jur.ID)
	fixtures.CreateMembership(ctx, user.ID, session.ID, "manager", false)

	role, ok, err := store.RoleInSession(ctx, user.ID, session.ID)
	if err != nil {
		t.Fatalf("RoleInSession failed: %v", err)
	}
	if !ok || role != "manager" {
		t.Errorf("RoleInSession = %q, %v; want manager, true", role, ok)
	}
}

func TestStore_RoleInSession_NoMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "New York", "NY")
	session := fixtures.CreateSession(ctx, "NY-2025", jur.ID)

	_, ok, err := store.RoleInSession(ctx, user.ID, session.ID)
	if err != nil {
		t.Fatalf("RoleInSession failed: %v", err)
	}
	if ok {
		t.Error("RoleInSession should report ok=false without a membership")
	}
}

func TestStore_SwitchActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	ca := fixtures.CreateJurisdiction(ctx, "California", "CA")
	ny := fixtures.CreateJurisdiction(ctx, "New York", "NY")
	caSession := fixtures.CreateSession(ctx, "CA-2025", ca.ID)
	nySession := fixtures.CreateSession(ctx, "NY-2025", ny.ID)

	fixtures.CreateMembership(ctx, user.ID, caSession.ID, "manager", true)
	fixtures.CreateMembership(ctx, user.ID, nySession.ID, "viewer", false)

	if err := store.SwitchActive(ctx, user.ID, nySession.ID); err != nil {
		t.Fatalf("SwitchActive failed: %v", err)
	}

	active, err := store.ActiveForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ActiveForUser failed: %v", err)
	}
	if active.SessionID != nySession.ID {
		t.Errorf("active session: got %s, want %s", active.SessionID.Hex(), nySession.ID.Hex())
	}

	count, err := db.Collection("memberships").CountDocuments(ctx, bson.M{
		"user_id":   user.ID,
		"is_active": true,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 active membership, got %d", count)
	}

	// Roles are untouched by the switch.
	m, err := store.GetByUserAndSession(ctx, user.ID, caSession.ID)
	if err != nil {
		t.Fatalf("GetByUserAndSession failed: %v", err)
	}
	if m.Role != "manager" || m.IsActive {
		t.Errorf("CA membership after switch: role=%q active=%v", m.Role, m.IsActive)
	}
}

func TestStore_SwitchActive_NotAMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)

	err := store.SwitchActive(ctx, user.ID, session.ID)
	if !errors.Is(err, membershipstore.ErrNoMembership) {
		t.Fatalf("err = %v, want ErrNoMembership", err)
	}
}

func TestStore_SetActiveFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)
	m := fixtures.CreateMembership(ctx, user.ID, session.ID, "viewer", true)

	if err := store.SetActiveFlag(ctx, m.ID, false); err != nil {
		t.Fatalf("SetActiveFlag(false) failed: %v", err)
	}
	if _, err := store.ActiveForUser(ctx, user.ID); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Fatalf("ActiveForUser after deactivate: err = %v, want ErrNotFound", err)
	}

	if err := store.SetActiveFlag(ctx, m.ID, true); err != nil {
		t.Fatalf("SetActiveFlag(true) failed: %v", err)
	}
	active, err := store.ActiveForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ActiveForUser failed: %v", err)
	}
	if active.ID != m.ID {
		t.Errorf("active membership: got %s, want %s", active.ID.Hex(), m.ID.Hex())
	}

	if err := store.SetActiveFlag(ctx, primitive.NewObjectID(), true); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Fatalf("unknown id: err = %v, want ErrNotFound", err)
	}

	// Roles are untouched by the flag flips.
	got, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != "viewer" {
		t.Errorf("Role after flag flips: got %q, want viewer", got.Role)
	}
}

func TestStore_UpdateRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)
	m := fixtures.CreateMembership(ctx, user.ID, session.ID, "viewer", true)

	if err := store.UpdateRole(ctx, m.ID, "admin"); err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}

	got, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != "admin" {
		t.Errorf("Role: got %q, want %q", got.Role, "admin")
	}
	if !got.IsActive {
		t.Error("UpdateRole must not touch is_active")
	}
}

func TestStore_UpdateRole_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)
	m := fixtures.CreateMembership(ctx, user.ID, session.ID, "viewer", true)

	if err := store.UpdateRole(ctx, m.ID, "supervisor"); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestStore_ActiveForUser_NoneSelected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)
	fixtures.CreateMembership(ctx, user.ID, session.ID, "viewer", false)

	_, err := store.ActiveForUser(ctx, user.ID)
	if !errors.Is(err, membershipstore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Test User", "user@example.com", "member")
	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)
	m := fixtures.CreateMembership(ctx, user.ID, session.ID, "viewer", true)

	if err := store.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, m.ID); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Fatalf("second Delete: err = %v, want ErrNotFound", err)
	}
}

// setJoinedAt backdates a membership so ordering tests do not depend on
// insert timing.
func setJoinedAt(t *testing.T, f *testutil.Fixtures, ctx context.Context, id primitive.ObjectID, joined time.Time) {
	t.Helper()
	_, err := f.DB().Collection("memberships").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"joined_at": joined}})
	if err != nil {
		t.Fatalf("failed to set joined_at: %v", err)
	}
}

func TestStore_ListBySession_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)
	alice := fixtures.CreateUser(ctx, "Alice Admin", "alice@example.com", "member")
	bob := fixtures.CreateUser(ctx, "Bob Viewer", "bob@example.com", "member")

	now := time.Now().UTC()
	founder := fixtures.CreateMembership(ctx, alice.ID, session.ID, "admin", true)
	setJoinedAt(t, fixtures, ctx, founder.ID, now.Add(-48*time.Hour))
	newest := fixtures.CreateMembership(ctx, bob.ID, session.ID, "viewer", false)
	setJoinedAt(t, fixtures, ctx, newest.ID, now)

	rows, err := store.ListBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != newest.ID || rows[1].ID != founder.ID {
		t.Errorf("order: got %s then %s, want newest membership first",
			rows[0].ID.Hex(), rows[1].ID.Hex())
	}
}

func TestStore_ListBySessionWithUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	jur := fixtures.CreateJurisdiction(ctx, "California", "CA")
	session := fixtures.CreateSession(ctx, "CA-2025", jur.ID)
	alice := fixtures.CreateUser(ctx, "Alice Admin", "alice@example.com", "member")
	bob := fixtures.CreateUser(ctx, "Bob Viewer", "bob@example.com", "member")

	now := time.Now().UTC()
	founder := fixtures.CreateMembership(ctx, alice.ID, session.ID, "admin", true)
	setJoinedAt(t, fixtures, ctx, founder.ID, now.Add(-48*time.Hour))
	newest := fixtures.CreateMembership(ctx, bob.ID, session.ID, "viewer", false)
	setJoinedAt(t, fixtures, ctx, newest.ID, now)

	rows, err := store.ListBySessionWithUsers(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListBySessionWithUsers failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Most recently joined first.
	if rows[0].UserName != "Bob Viewer" || rows[0].Role != "viewer" {
		t.Errorf("first row: %q/%q, want the newest member", rows[0].UserName, rows[0].Role)
	}
	if rows[1].UserEmail != "alice@example.com" {
		t.Errorf("second row email: %q", rows[1].UserEmail)
	}
}
