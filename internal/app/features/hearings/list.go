// internal/app/features/hearings/list.go
package hearings

import (
	"context"
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

type listData struct {
	viewdata.BaseVM
	Session      *models.LegislativeSession
	Hearings     []models.Hearing
	Statuses     []string
	FilterStatus string
	CanCreate    bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/hearings                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.Require(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	status := query.Get(r, "status")
	if status != "" && !models.ValidHearingStatus(status) {
		status = ""
	}

	hearings, err := h.Hearings.ListBySession(ctx, sc.Session.ID, status)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list hearings", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	templates.Render(w, r, "hearings_list", listData{
		BaseVM:       viewdata.NewBaseVM(r, "Hearings", "/sessions/"+sc.Session.ID.Hex()),
		Session:      sc.Session,
		Hearings:     hearings,
		Statuses:     models.HearingStatuses,
		FilterStatus: status,
		CanCreate:    sc.Role.Can(authz.ActionCreateHearing) && !sc.Session.Archived(),
	})
}
