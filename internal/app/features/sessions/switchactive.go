// internal/app/features/sessions/switchactive.go
package sessions

import (
	"context"
	"errors"
	"net/http"

	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/switch – select as the active session            |
*─────────────────────────────────────────────────────────────────────────────*/

// Any member may switch, including viewers. The active flag only drives
// which session the UI defaults to.
func (h *Handler) HandleSwitchPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.requireSession(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	err := h.Memberships.SwitchActive(ctx, sc.UserID, sc.Session.ID)
	switch {
	case errors.Is(err, membershipstore.ErrNoMembership):
		// Membership vanished between the gate check and the switch.
		http.Redirect(w, r, "/sessions", http.StatusSeeOther)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db switch active session", err, "A database error occurred.", "/sessions")
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/sessions/"+sc.Session.ID.Hex())
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/sessions/"+sc.Session.ID.Hex(), http.StatusSeeOther)
}
