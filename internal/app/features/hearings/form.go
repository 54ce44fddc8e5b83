// internal/app/features/hearings/form.go
package hearings

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/billtrack/internal/app/features/shared"
	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	hearingstore "github.com/dalemusser/billtrack/internal/app/store/hearings"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/inputval"
	"github.com/dalemusser/billtrack/internal/app/system/paging"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type formData struct {
	viewdata.BaseVM
	Session  *models.LegislativeSession
	Hearing  *models.Hearing // nil on the create form
	Error    string
	Statuses []string
	Bills    []models.Bill // session bills selectable for the agenda
	Form     formValues
}

type formValues struct {
	Title       string
	Date        string
	Time        string
	Location    string
	Description string
	Status      string
	BillIDs     []string
}

type hearingInput struct {
	Title string `validate:"required,min=3,max=200" label:"Title"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/hearings/new – contributors                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionCreateHearing)
	if !ok {
		return
	}

	h.renderForm(w, r, ctx, sc, nil, "", formValues{Status: models.HearingScheduled})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/hearings/new                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleNewPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionCreateHearing)
	if !ok {
		return
	}

	form, parsed, errMsg := parseHearingForm(r)
	if errMsg != "" {
		h.renderForm(w, r, ctx, sc, nil, errMsg, form)
		return
	}

	hearing, err := h.Hearings.Create(ctx, hearingstore.NewHearing{
		SessionID:   sc.Session.ID,
		Title:       parsed.title,
		Date:        parsed.date,
		Location:    parsed.location,
		Description: parsed.description,
		BillIDs:     parsed.billIDs,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db create hearing", err, "A database error occurred.", hearingsURL(sc))
		return
	}

	h.Log.Info("hearing created",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("hearing_id", hearing.ID.Hex()))

	http.Redirect(w, r, hearingsURL(sc)+"/"+hearing.ID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/hearings/{hearingID}/edit                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionUpdateHearing)
	if !ok {
		return
	}

	hearing, ok := h.hearingFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	form := formValues{
		Title:       hearing.Title,
		Date:        hearing.Date.Format("2006-01-02"),
		Time:        hearing.Date.Format("15:04"),
		Location:    hearing.Location,
		Description: hearing.Description,
		Status:      hearing.Status,
	}
	for _, bid := range hearing.BillIDs {
		form.BillIDs = append(form.BillIDs, bid.Hex())
	}

	h.renderForm(w, r, ctx, sc, hearing, "", form)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/hearings/{hearingID}/edit                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionUpdateHearing)
	if !ok {
		return
	}

	hearing, ok := h.hearingFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	form, parsed, errMsg := parseHearingForm(r)
	if errMsg != "" {
		h.renderForm(w, r, ctx, sc, hearing, errMsg, form)
		return
	}

	status := form.Status
	if status == "" {
		status = hearing.Status
	}
	if !models.ValidHearingStatus(status) {
		h.renderForm(w, r, ctx, sc, hearing, "Please choose a valid status.", form)
		return
	}

	err := h.Hearings.Update(ctx, hearing.ID, hearingstore.HearingUpdate{
		Title:       parsed.title,
		Date:        parsed.date,
		Location:    parsed.location,
		Description: parsed.description,
		Status:      status,
		BillIDs:     parsed.billIDs,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db update hearing", err, "A database error occurred.", hearingsURL(sc))
		return
	}

	http.Redirect(w, r, hearingsURL(sc)+"/"+hearing.ID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/hearings/{hearingID}/delete – managers           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionDeleteHearing)
	if !ok {
		return
	}

	hearing, ok := h.hearingFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	if err := h.Hearings.Delete(ctx, hearing.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "db delete hearing", err, "A database error occurred.", hearingsURL(sc))
		return
	}

	h.Log.Info("hearing deleted",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("hearing_id", hearing.ID.Hex()))

	http.Redirect(w, r, hearingsURL(sc), http.StatusSeeOther)
}

type parsedHearing struct {
	title       string
	date        time.Time
	location    string
	description string
	billIDs     []primitive.ObjectID
}

func parseHearingForm(r *http.Request) (formValues, parsedHearing, string) {
	if err := r.ParseForm(); err != nil {
		return formValues{}, parsedHearing{}, "Invalid form data."
	}

	form := formValues{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Status:      r.FormValue("status"),
		BillIDs:     r.Form["bill_ids"],
	}

	if res := inputval.Validate(hearingInput{Title: form.Title}); res.HasErrors() {
		return form, parsedHearing{}, res.First()
	}

	if form.Time == "" {
		form.Time = "09:00"
	}
	date, err := time.Parse("2006-01-02 15:04", form.Date+" "+form.Time)
	if err != nil {
		return form, parsedHearing{}, "Please enter a valid date and time."
	}

	p := parsedHearing{
		title:       form.Title,
		date:        date.UTC(),
		location:    form.Location,
		description: form.Description,
	}
	for _, v := range form.BillIDs {
		bid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return form, parsedHearing{}, "Invalid bill selection."
		}
		p.billIDs = append(p.billIDs, bid)
	}

	return form, p, ""
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, ctx context.Context, sc shared.SessionCtx, hearing *models.Hearing, errMsg string, form formValues) {
	// One page of bills is enough for the agenda picker.
	bills, err := h.Bills.List(ctx, billstore.ListFilter{SessionID: sc.Session.ID}, paging.ConfigureKeyset("", ""))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list bills for agenda", err, "A database error occurred.", hearingsURL(sc))
		return
	}

	title := "New hearing"
	if hearing != nil {
		title = "Edit hearing"
	}

	templates.Render(w, r, "hearing_form", formData{
		BaseVM:   viewdata.NewBaseVM(r, title, hearingsURL(sc)),
		Session:  sc.Session,
		Hearing:  hearing,
		Error:    errMsg,
		Statuses: models.HearingStatuses,
		Bills:    bills,
		Form:     form,
	})
}
