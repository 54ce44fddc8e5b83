// internal/app/features/shared/sessionguard.go
package shared

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	"github.com/dalemusser/billtrack/internal/app/policy/sessionpolicy"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionCtx is the resolved authorization context for a session-scoped
// request: the session itself, the caller's role in it, and the caller.
type SessionCtx struct {
	Session *models.LegislativeSession
	Role    authz.Role
	UserID  primitive.ObjectID
}

// SessionGuard resolves the {sessionID} URL param and authorizes actions
// against the membership gate. Every session-scoped feature embeds one.
type SessionGuard struct {
	Sessions *sessionstore.Store
	Gate     *authz.Gate
	ErrLog   *uierrors.ErrorLogger
}

// Require loads the session and authorizes the action. On failure it
// renders the appropriate error page and returns ok=false.
//
// Outsiders get a 404, not a 403: the existence of a session is itself
// private to its members.
func (g *SessionGuard) Require(w http.ResponseWriter, r *http.Request, ctx context.Context, action authz.Action) (SessionCtx, bool) {
	_, _, userID, signedIn := authz.UserCtx(r)
	if !signedIn {
		uierrors.RenderUnauthorized(w, r, "")
		return SessionCtx{}, false
	}

	sid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sessionID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "", "/sessions")
		return SessionCtx{}, false
	}

	session, err := g.Sessions.GetByID(ctx, sid)
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		uierrors.RenderNotFound(w, r, "", "/sessions")
		return SessionCtx{}, false
	case err != nil:
		g.ErrLog.LogServerError(w, r, "db load session", err, "A server error occurred.", "/sessions")
		return SessionCtx{}, false
	}

	role, err := g.Gate.Authorize(ctx, userID, sid, action)
	switch {
	case errors.Is(err, authz.ErrNoAccess):
		uierrors.RenderNotFound(w, r, "", "/sessions")
		return SessionCtx{}, false
	case errors.Is(err, authz.ErrForbidden):
		uierrors.RenderForbidden(w, r, "You don't have permission to do that in this session.", "/sessions/"+sid.Hex())
		return SessionCtx{}, false
	case err != nil:
		g.ErrLog.LogServerError(w, r, "resolve session role", err, "A server error occurred.", "/sessions")
		return SessionCtx{}, false
	}

	return SessionCtx{Session: session, Role: role, UserID: userID}, true
}

// RequireWritable is Require plus the archived-session check: archived
// sessions are read-only for everyone.
func (g *SessionGuard) RequireWritable(w http.ResponseWriter, r *http.Request, ctx context.Context, action authz.Action) (SessionCtx, bool) {
	sc, ok := g.Require(w, r, ctx, action)
	if !ok {
		return sc, false
	}
	if err := sessionpolicy.CheckWrite(sc.Session, sc.Role, action); err != nil {
		uierrors.RenderForbidden(w, r, "This session is archived and can no longer be changed.", "/sessions/"+sc.Session.ID.Hex())
		return SessionCtx{}, false
	}
	return sc, true
}
