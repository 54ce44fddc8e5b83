// internal/app/features/dashboard/handler.go
//
// The dashboard summarizes the signed-in user's active session: bill counts
// by status, upcoming hearings, and the bills assigned to them. Users with no
// active session get pointed at the session list instead.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	hearingstore "github.com/dalemusser/billtrack/internal/app/store/hearings"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/paging"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	Sessions    *sessionstore.Store
	Memberships *membershipstore.Store
	Bills       *billstore.Store
	Hearings    *hearingstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		ErrLog:      errLog,
		Sessions:    sessionstore.New(db),
		Memberships: membershipstore.New(db),
		Bills:       billstore.New(db),
		Hearings:    hearingstore.New(db),
	}
}

type statusCount struct {
	Status string
	Count  int64
}

type sessionLink struct {
	Session models.LegislativeSession
	Role    string
}

type pageData struct {
	viewdata.BaseVM
	HasActive    bool
	Session      *models.LegislativeSession
	Role         string
	StatusCounts []statusCount
	TotalBills   int64
	Upcoming     []models.Hearing
	MyBills      []models.Bill
	Sessions     []sessionLink
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/")
		return
	}

	data := pageData{BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/")}

	links, ok := h.sessionLinks(w, r, ctx, userID)
	if !ok {
		return
	}
	data.Sessions = links

	active, err := h.Memberships.ActiveForUser(ctx, userID)
	switch {
	case errors.Is(err, membershipstore.ErrNotFound):
		templates.Render(w, r, "dashboard", data)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db load active membership", err, "A database error occurred.", "/")
		return
	}

	session, err := h.Sessions.GetByID(ctx, active.SessionID)
	if errors.Is(err, sessionstore.ErrNotFound) {
		// The active session was deleted out from under the membership.
		templates.Render(w, r, "dashboard", data)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db load active session", err, "A database error occurred.", "/")
		return
	}

	counts, err := h.Bills.CountByStatus(ctx, session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db count bills", err, "A database error occurred.", "/")
		return
	}
	var total int64
	var statusCounts []statusCount
	for _, s := range models.BillStatuses {
		if n := counts[s]; n > 0 {
			statusCounts = append(statusCounts, statusCount{Status: s, Count: n})
			total += n
		}
	}

	upcoming, err := h.Hearings.ListUpcoming(ctx, session.ID, time.Now().UTC(), 5)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list upcoming hearings", err, "A database error occurred.", "/")
		return
	}

	mine, err := h.Bills.List(ctx, billstore.ListFilter{
		SessionID:  session.ID,
		AssignedTo: &userID,
	}, paging.ConfigureKeyset("", ""))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list assigned bills", err, "A database error occurred.", "/")
		return
	}

	data.HasActive = true
	data.Session = session
	data.Role = active.Role
	data.StatusCounts = statusCounts
	data.TotalBills = total
	data.Upcoming = upcoming
	data.MyBills = mine

	templates.Render(w, r, "dashboard", data)
}

// sessionLinks loads every session the user belongs to, most recently joined
// first, matching the membership sort.
func (h *Handler) sessionLinks(w http.ResponseWriter, r *http.Request, ctx context.Context, userID primitive.ObjectID) ([]sessionLink, bool) {
	memberships, err := h.Memberships.ListByUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list memberships", err, "A database error occurred.", "/")
		return nil, false
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.SessionID)
	}
	sessions, err := h.Sessions.GetManyByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db load sessions", err, "A database error occurred.", "/")
		return nil, false
	}

	links := make([]sessionLink, 0, len(memberships))
	for _, m := range memberships {
		s, ok := sessions[m.SessionID]
		if !ok {
			continue
		}
		links = append(links, sessionLink{Session: s, Role: m.Role})
	}
	return links, true
}
