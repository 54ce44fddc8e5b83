package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/testutil"
)

func TestCreate_DuplicateEmailCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error: %v", err)
	}

	if _, err := store.Create(ctx, "Pat Jones", "pat@example.com", "hash", "internal", "member"); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}

	_, err := store.Create(ctx, "Pat Again", "PAT@Example.COM", "hash", "internal", "member")
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("Create() with same email, different case: got %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	created, err := store.Create(ctx, "Sam Rivera", "sam@example.com", "hash", "internal", "member")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := store.GetByEmail(ctx, "SAM@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetByEmail() error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() returned wrong user")
	}
}

func TestSetGlobalRoleByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	created, err := store.Create(ctx, "Future Admin", "lead@example.com", "hash", "internal", "member")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := store.SetGlobalRoleByEmail(ctx, "Lead@Example.com", "admin"); err != nil {
		t.Fatalf("SetGlobalRoleByEmail() error: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Role != "admin" {
		t.Errorf("role: got %q, want admin", got.Role)
	}

	err = store.SetGlobalRoleByEmail(ctx, "nobody@example.com", "admin")
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("unknown email: got %v, want ErrNotFound", err)
	}
}
