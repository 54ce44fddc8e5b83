// internal/app/system/authz/gate_test.go
package authz

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSource struct {
	roles map[[2]primitive.ObjectID]string
	err   error
}

func (f *fakeSource) RoleInSession(_ context.Context, userID, sessionID primitive.ObjectID) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	role, ok := f.roles[[2]primitive.ObjectID{userID, sessionID}]
	return role, ok, nil
}

func TestGateResolveRole(t *testing.T) {
	user := primitive.NewObjectID()
	caSession := primitive.NewObjectID()
	nySession := primitive.NewObjectID()

	gate := NewGate(&fakeSource{roles: map[[2]primitive.ObjectID]string{
		{user, caSession}: "manager",
		{user, nySession}: "viewer",
	}})

	ctx := context.Background()

	role, err := gate.ResolveRole(ctx, user, caSession)
	if err != nil || role != RoleManager {
		t.Fatalf("ResolveRole(CA) = %v, %v; want manager", role, err)
	}
	role, err = gate.ResolveRole(ctx, user, nySession)
	if err != nil || role != RoleViewer {
		t.Fatalf("ResolveRole(NY) = %v, %v; want viewer", role, err)
	}
}

func TestGateNoMembership(t *testing.T) {
	gate := NewGate(&fakeSource{roles: map[[2]primitive.ObjectID]string{}})

	_, err := gate.ResolveRole(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, ErrNoAccess) {
		t.Fatalf("err = %v, want ErrNoAccess", err)
	}
}

func TestGateCorruptRoleFailsClosed(t *testing.T) {
	user := primitive.NewObjectID()
	session := primitive.NewObjectID()
	gate := NewGate(&fakeSource{roles: map[[2]primitive.ObjectID]string{
		{user, session}: "overlord",
	}})

	_, err := gate.ResolveRole(context.Background(), user, session)
	if !errors.Is(err, ErrNoAccess) {
		t.Fatalf("err = %v, want ErrNoAccess for unrecognized role", err)
	}
}

func TestGateAuthorize(t *testing.T) {
	user := primitive.NewObjectID()
	session := primitive.NewObjectID()
	gate := NewGate(&fakeSource{roles: map[[2]primitive.ObjectID]string{
		{user, session}: "manager",
	}})

	ctx := context.Background()

	role, err := gate.Authorize(ctx, user, session, ActionCreateCategory)
	if err != nil || role != RoleManager {
		t.Fatalf("Authorize(create category) = %v, %v; want manager, nil", role, err)
	}

	if _, err := gate.Authorize(ctx, user, session, ActionArchiveSession); !errors.Is(err, ErrForbidden) {
		t.Fatalf("manager archiving session: err = %v, want ErrForbidden", err)
	}

	outsider := primitive.NewObjectID()
	if _, err := gate.Authorize(ctx, outsider, session, ActionViewSession); !errors.Is(err, ErrNoAccess) {
		t.Fatalf("outsider viewing session: err = %v, want ErrNoAccess", err)
	}
}

func TestGatePropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	gate := NewGate(&fakeSource{err: boom})

	_, err := gate.Authorize(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), ActionViewSession)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped source error", err)
	}
}
