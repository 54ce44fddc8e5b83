// internal/app/features/hearings/view.go
package hearings

import (
	"context"
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type viewPageData struct {
	viewdata.BaseVM
	Session   *models.LegislativeSession
	Hearing   *models.Hearing
	Agenda    []models.Bill
	CanEdit   bool
	CanDelete bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/hearings/{hearingID}                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.Require(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	hearing, ok := h.hearingFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	var agenda []models.Bill
	if len(hearing.BillIDs) > 0 {
		var err error
		agenda, err = h.Bills.ListByIDs(ctx, hearing.BillIDs)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "db load agenda bills", err, "A database error occurred.", hearingsURL(sc))
			return
		}
	}

	writable := !sc.Session.Archived()

	templates.Render(w, r, "hearing_view", viewPageData{
		BaseVM:    viewdata.NewBaseVM(r, hearing.Title, hearingsURL(sc)),
		Session:   sc.Session,
		Hearing:   hearing,
		Agenda:    agenda,
		CanEdit:   writable && sc.Role.Can(authz.ActionUpdateHearing),
		CanDelete: writable && sc.Role.Can(authz.ActionDeleteHearing),
	})
}
