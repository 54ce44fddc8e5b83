// internal/app/features/sessions/new.go
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

type newFormData struct {
	viewdata.BaseVM
	Error         string
	Jurisdictions []models.Jurisdiction
	Form          newFormValues
}

type newFormValues struct {
	Name           string
	Identifier     string
	JurisdictionID string
	StartDate      string
	EndDate        string
	Description    string
}

// newSessionInput is validated with inputval struct tags.
type newSessionInput struct {
	Name       string `validate:"required,min=3,max=120" label:"Name"`
	Identifier string `validate:"required,min=2,max=40" label:"Identifier"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/new – global admins only (enforced in routes)                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	h.renderNewForm(w, r, ctx, "", newFormValues{})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/new                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleNewPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse new session form", err, "Invalid form data.", "/sessions")
		return
	}

	form := newFormValues{
		Name:           strings.TrimSpace(r.FormValue("name")),
		Identifier:     strings.ToUpper(strings.TrimSpace(r.FormValue("identifier"))),
		JurisdictionID: r.FormValue("jurisdiction_id"),
		StartDate:      r.FormValue("start_date"),
		EndDate:        r.FormValue("end_date"),
		Description:    strings.TrimSpace(r.FormValue("description")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if res := inputval.Validate(newSessionInput{Name: form.Name, Identifier: form.Identifier}); res.HasErrors() {
		h.renderNewForm(w, r, ctx, res.First(), form)
		return
	}

	jurisdictionID, err := primitive.ObjectIDFromHex(form.JurisdictionID)
	if err != nil {
		h.renderNewForm(w, r, ctx, "Please choose a jurisdiction.", form)
		return
	}

	startDate, err := time.Parse("2006-01-02", form.StartDate)
	if err != nil {
		h.renderNewForm(w, r, ctx, "Please enter a valid start date.", form)
		return
	}

	var endDate *time.Time
	if form.EndDate != "" {
		ed, err := time.Parse("2006-01-02", form.EndDate)
		if err != nil {
			h.renderNewForm(w, r, ctx, "Please enter a valid end date.", form)
			return
		}
		if ed.Before(startDate) {
			h.renderNewForm(w, r, ctx, "End date must be on or after the start date.", form)
			return
		}
		endDate = &ed
	}

	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session, err := h.Sessions.Create(ctx, sessionstore.NewSession{
		Name:           form.Name,
		Identifier:     form.Identifier,
		JurisdictionID: jurisdictionID,
		StartDate:      startDate,
		EndDate:        endDate,
		Description:    form.Description,
	}, userID)
	switch {
	case errors.Is(err, sessionstore.ErrDuplicateIdentifier):
		h.renderNewForm(w, r, ctx, "That identifier is already in use.", form)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db create session", err, "A database error occurred.", "/sessions")
		return
	}

	h.AuditLog.Admin(ctx, r, "session_created", userID, primitive.NilObjectID, session.ID, map[string]string{
		"identifier": session.Identifier,
	})
	h.Log.Info("session created",
		zap.String("session_id", session.ID.Hex()),
		zap.String("identifier", session.Identifier))

	http.Redirect(w, r, "/sessions/"+session.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) renderNewForm(w http.ResponseWriter, r *http.Request, ctx context.Context, errMsg string, form newFormValues) {
	jurisdictions, err := h.Jurisdictions.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list jurisdictions", err, "A database error occurred.", "/sessions")
		return
	}

	templates.Render(w, r, "session_new", newFormData{
		BaseVM:        viewdata.NewBaseVM(r, "New session", "/sessions"),
		Error:         errMsg,
		Jurisdictions: jurisdictions,
		Form:          form,
	})
}
