// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the signed-in user's GLOBAL role (lowercased), name, Mongo
// ObjectID, and a found flag. If no user is present in context or the user ID
// is malformed, it returns "visitor", "", NilObjectID, false, so ok=true
// always means a valid, authenticated user with a valid ObjectID.
//
// The global role governs system-wide capabilities only (creating sessions,
// admin screens). Per-session privileges come from the membership Gate.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsGlobalAdmin reports whether the current request's user carries the
// global admin role.
func IsGlobalAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// ActiveSessionID returns the legislative session the user most recently
// switched to, as recorded in their login session. NilObjectID when no
// session has been selected.
func ActiveSessionID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ActiveSessionID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.ActiveSessionID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
