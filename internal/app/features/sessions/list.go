// internal/app/features/sessions/list.go
package sessions

import (
	"context"
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sessionRow pairs a membership with its session for the list page.
type sessionRow struct {
	Session  models.LegislativeSession
	Role     string
	IsActive bool
}

type listData struct {
	viewdata.BaseVM
	Rows          []sessionRow
	CanCreate     bool // global admins only
	HasMembership bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions – the user's sessions                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memberships, err := h.Memberships.ListByUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list memberships", err, "A database error occurred.", "/dashboard")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.SessionID)
	}
	byID, err := h.Sessions.GetManyByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db load sessions for list", err, "A database error occurred.", "/dashboard")
		return
	}

	rows := make([]sessionRow, 0, len(memberships))
	for _, m := range memberships {
		s, found := byID[m.SessionID]
		if !found {
			continue
		}
		rows = append(rows, sessionRow{
			Session:  s,
			Role:     m.Role,
			IsActive: m.IsActive,
		})
	}

	templates.Render(w, r, "sessions_list", listData{
		BaseVM:        viewdata.NewBaseVM(r, "Your sessions", "/dashboard"),
		Rows:          rows,
		CanCreate:     authz.IsGlobalAdmin(r),
		HasMembership: len(rows) > 0,
	})
}
