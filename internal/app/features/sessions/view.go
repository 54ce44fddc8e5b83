// internal/app/features/sessions/view.go
package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type viewData struct {
	viewdata.BaseVM
	Session      *models.LegislativeSession
	Jurisdiction *models.Jurisdiction
	MemberRole   string
	BillCount    int64
	MemberCount  int64
	StatusCounts map[string]int64
	Upcoming     []models.Hearing

	CanManage  bool // session settings
	CanArchive bool
	IsArchived bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID} – overview                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.requireSession(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	jurisdiction, err := h.Jurisdictions.GetByID(ctx, sc.Session.JurisdictionID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db load jurisdiction", err, "A database error occurred.", "/sessions")
		return
	}

	statusCounts, err := h.Bills.CountByStatus(ctx, sc.Session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db count bills by status", err, "A database error occurred.", "/sessions")
		return
	}
	var billCount int64
	for _, n := range statusCounts {
		billCount += n
	}

	memberCount, err := h.Memberships.CountBySession(ctx, sc.Session.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db count members", err, "A database error occurred.", "/sessions")
		return
	}

	upcoming, err := h.Hearings.ListUpcoming(ctx, sc.Session.ID, time.Now().UTC(), 5)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list upcoming hearings", err, "A database error occurred.", "/sessions")
		return
	}

	templates.Render(w, r, "session_view", viewData{
		BaseVM:       viewdata.NewBaseVM(r, sc.Session.Name, "/sessions"),
		Session:      sc.Session,
		Jurisdiction: jurisdiction,
		MemberRole:   sc.Role.String(),
		BillCount:    billCount,
		MemberCount:  memberCount,
		StatusCounts: statusCounts,
		Upcoming:     upcoming,
		CanManage:    sc.Role.Can(authz.ActionUpdateSession),
		CanArchive:   sc.Role.Can(authz.ActionArchiveSession),
		IsArchived:   sc.Session.Archived(),
	})
}
