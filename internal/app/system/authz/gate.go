// internal/app/system/authz/gate.go
package authz

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNoAccess means the user has no membership in the session at all.
	// Handlers render it as 404 so outsiders cannot probe which sessions exist.
	ErrNoAccess = errors.New("no membership in this session")

	// ErrForbidden means the user is a member but their role does not
	// permit the attempted action. Rendered as 403.
	ErrForbidden = errors.New("insufficient role for this action")
)

// MembershipSource yields a user's stored role within a session.
// ok=false means no membership document exists for the pair.
type MembershipSource interface {
	RoleInSession(ctx context.Context, userID, sessionID primitive.ObjectID) (role string, ok bool, err error)
}

// Gate answers "may user U perform action A in session S" by resolving the
// user's membership role and comparing it against the action table. The
// membership's is_active flag plays no part here; it only selects which
// session the UI shows by default.
type Gate struct {
	src MembershipSource
}

func NewGate(src MembershipSource) *Gate {
	return &Gate{src: src}
}

// ResolveRole returns the user's role in the session, or ErrNoAccess when no
// membership exists. A membership carrying an unrecognized role string is
// treated the same as no membership.
func (g *Gate) ResolveRole(ctx context.Context, userID, sessionID primitive.ObjectID) (Role, error) {
	name, ok, err := g.src.RoleInSession(ctx, userID, sessionID)
	if err != nil {
		return RoleViewer, err
	}
	if !ok {
		return RoleViewer, ErrNoAccess
	}
	role, ok := ParseRole(name)
	if !ok {
		return RoleViewer, ErrNoAccess
	}
	return role, nil
}

// Authorize resolves the user's role and checks it against the action's
// minimum. On success it returns the resolved role so handlers can make
// follow-up decisions (e.g. which controls to render) without a second
// membership lookup.
func (g *Gate) Authorize(ctx context.Context, userID, sessionID primitive.ObjectID, action Action) (Role, error) {
	role, err := g.ResolveRole(ctx, userID, sessionID)
	if err != nil {
		return role, err
	}
	if !role.Can(action) {
		return role, ErrForbidden
	}
	return role, nil
}
