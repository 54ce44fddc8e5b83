// internal/app/features/sessions/settings.go
package sessions

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/inputval"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type settingsData struct {
	viewdata.BaseVM
	Session    *models.LegislativeSession
	Error      string
	CanArchive bool

	// Statuses the session may still move to, for the lifecycle form.
	NextStatuses []string
}

// nextStatuses lists the forward transitions available from the current
// status, excluding archived (archiving has its own confirm flow).
func nextStatuses(current string) []string {
	var out []string
	for _, s := range []string{models.SessionActive, models.SessionClosed} {
		if s != current && models.ValidSessionTransition(current, s) {
			out = append(out, s)
		}
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/settings – managers and admins                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.requireSession(w, r, ctx, authz.ActionUpdateSession)
	if !ok {
		return
	}

	h.renderSettings(w, r, sc, "")
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, sc sessionCtx, errMsg string) {
	templates.Render(w, r, "session_settings", settingsData{
		BaseVM:       viewdata.NewBaseVM(r, "Session settings", "/sessions/"+sc.Session.ID.Hex()),
		Session:      sc.Session,
		Error:        errMsg,
		CanArchive:   sc.Role.Can(authz.ActionArchiveSession),
		NextStatuses: nextStatuses(sc.Session.Status),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/settings – edit name, dates, description         |
*─────────────────────────────────────────────────────────────────────────────*/

type settingsInput struct {
	Name string `validate:"required,min=3,max=120" label:"Name"`
}

func (h *Handler) HandleSettingsPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.requireWritableSession(w, r, ctx, authz.ActionUpdateSession)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse session settings form", err, "Invalid form data.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if res := inputval.Validate(settingsInput{Name: name}); res.HasErrors() {
		h.renderSettings(w, r, sc, res.First())
		return
	}

	startDate, err := time.Parse("2006-01-02", r.FormValue("start_date"))
	if err != nil {
		h.renderSettings(w, r, sc, "Please enter a valid start date.")
		return
	}

	var endDate *time.Time
	if v := r.FormValue("end_date"); v != "" {
		ed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.renderSettings(w, r, sc, "Please enter a valid end date.")
			return
		}
		if ed.Before(startDate) {
			h.renderSettings(w, r, sc, "End date must be on or after the start date.")
			return
		}
		endDate = &ed
	}

	err = h.Sessions.Update(ctx, sc.Session.ID, sessionstore.SessionUpdate{
		Name:        name,
		StartDate:   startDate,
		EndDate:     endDate,
		Description: strings.TrimSpace(r.FormValue("description")),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db update session", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	http.Redirect(w, r, "/sessions/"+sc.Session.ID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/status – lifecycle transition                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleStatusPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.requireWritableSession(w, r, ctx, authz.ActionUpdateSession)
	if !ok {
		return
	}

	to := r.FormValue("status")
	err := h.Sessions.UpdateStatus(ctx, sc.Session.ID, to)
	switch {
	case errors.Is(err, sessionstore.ErrInvalidTransition):
		h.renderSettings(w, r, sc, "The session cannot move back to an earlier status.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db update session status", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	h.Log.Info("session status changed",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("from", sc.Session.Status),
		zap.String("to", to))

	http.Redirect(w, r, "/sessions/"+sc.Session.ID.Hex()+"/settings", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/archive – admins only, terminal                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleArchivePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// ActionArchiveSession stays allowed on an archived session; archiving
	// twice is a no-op rather than an error.
	sc, ok := h.requireSession(w, r, ctx, authz.ActionArchiveSession)
	if !ok {
		return
	}

	if err := h.Sessions.Archive(ctx, sc.Session.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "db archive session", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	h.AuditLog.Admin(ctx, r, "session_archived", sc.UserID, primitive.NilObjectID, sc.Session.ID, nil)
	h.Log.Info("session archived", zap.String("session_id", sc.Session.ID.Hex()))

	http.Redirect(w, r, "/sessions", http.StatusSeeOther)
}
