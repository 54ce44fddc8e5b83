// internal/app/features/bills/form.go
package bills

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/billtrack/internal/app/features/shared"
	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/inputval"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type formData struct {
	viewdata.BaseVM
	Session    *models.LegislativeSession
	Bill       *models.Bill // nil on the create form
	Error      string
	Statuses   []string
	Priorities []string
	Categories []models.SessionCategory
	Members    []membershipstore.MemberDetail
	Form       formValues
}

type formValues struct {
	BillNumber     string
	Title          string
	Summary        string
	Status         string
	Priority       string
	PrimarySponsor string
	Sponsors       string // comma-separated in the form
	Committees     string
	Topics         string
	CategoryIDs    []string
	AssignedTo     string
	IntroducedDate string
}

type billInput struct {
	Title string `validate:"required,min=3,max=300" label:"Title"`
}

// splitList turns a comma-separated form field into a trimmed slice.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/bills/new – contributors                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionCreateBill)
	if !ok {
		return
	}

	h.renderForm(w, r, ctx, sc, nil, "", formValues{Status: models.BillIntroduced, Priority: models.PriorityNormal})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/bills/new                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleNewPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionCreateBill)
	if !ok {
		return
	}

	form, parsed, errMsg := h.parseBillForm(r, sc)
	if errMsg != "" {
		h.renderForm(w, r, ctx, sc, nil, errMsg, form)
		return
	}

	billNumber := strings.ToUpper(strings.TrimSpace(r.FormValue("bill_number")))
	if billNumber == "" {
		h.renderForm(w, r, ctx, sc, nil, "Please enter the bill number.", form)
		return
	}

	bill, err := h.Bills.Create(ctx, billstore.NewBill{
		SessionID:      sc.Session.ID,
		JurisdictionID: sc.Session.JurisdictionID,
		BillNumber:     billNumber,
		Title:          parsed.title,
		Summary:        parsed.summary,
		Status:         parsed.status,
		Priority:       parsed.priority,
		PrimarySponsor: parsed.primarySponsor,
		Sponsors:       parsed.sponsors,
		Committees:     parsed.committees,
		Topics:         parsed.topics,
		CategoryIDs:    parsed.categoryIDs,
		AssignedTo:     parsed.assignedTo,
		IntroducedDate: parsed.introducedDate,
	})
	switch {
	case errors.Is(err, billstore.ErrDuplicateBillNumber):
		h.renderForm(w, r, ctx, sc, nil, "A bill with that number already exists in this session.", form)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db create bill", err, "A database error occurred.", billsURL(sc))
		return
	}

	h.Log.Info("bill created",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("bill_id", bill.ID.Hex()),
		zap.String("bill_number", bill.BillNumber))

	http.Redirect(w, r, billsURL(sc)+"/"+bill.ID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/bills/{billID}/edit – contributors               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionUpdateBill)
	if !ok {
		return
	}

	bill, ok := h.billFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	form := formValues{
		BillNumber:     bill.BillNumber,
		Title:          bill.Title,
		Summary:        bill.Summary,
		Status:         bill.Status,
		Priority:       bill.Priority,
		PrimarySponsor: bill.PrimarySponsor,
		Sponsors:       joinList(bill.Sponsors),
		Committees:     joinList(bill.Committees),
		Topics:         joinList(bill.Topics),
	}
	for _, cid := range bill.CategoryIDs {
		form.CategoryIDs = append(form.CategoryIDs, cid.Hex())
	}
	if bill.AssignedTo != nil {
		form.AssignedTo = bill.AssignedTo.Hex()
	}
	if bill.IntroducedDate != nil {
		form.IntroducedDate = bill.IntroducedDate.Format("2006-01-02")
	}

	h.renderForm(w, r, ctx, sc, bill, "", form)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/bills/{billID}/edit                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionUpdateBill)
	if !ok {
		return
	}

	bill, ok := h.billFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	form, parsed, errMsg := h.parseBillForm(r, sc)
	if errMsg != "" {
		h.renderForm(w, r, ctx, sc, bill, errMsg, form)
		return
	}

	err := h.Bills.Update(ctx, bill.ID, billstore.BillUpdate{
		Title:          parsed.title,
		Summary:        parsed.summary,
		Status:         parsed.status,
		Priority:       parsed.priority,
		PrimarySponsor: parsed.primarySponsor,
		Sponsors:       parsed.sponsors,
		Committees:     parsed.committees,
		Topics:         parsed.topics,
		CategoryIDs:    parsed.categoryIDs,
		AssignedTo:     parsed.assignedTo,
		IntroducedDate: parsed.introducedDate,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db update bill", err, "A database error occurred.", billsURL(sc))
		return
	}

	http.Redirect(w, r, billsURL(sc)+"/"+bill.ID.Hex(), http.StatusSeeOther)
}

// parsedBill holds the validated, store-ready form fields.
type parsedBill struct {
	title          string
	summary        string
	status         string
	priority       string
	primarySponsor string
	sponsors       []string
	committees     []string
	topics         []string
	categoryIDs    []primitive.ObjectID
	assignedTo     *primitive.ObjectID
	introducedDate *time.Time
}

func (h *Handler) parseBillForm(r *http.Request, sc shared.SessionCtx) (formValues, parsedBill, string) {
	if err := r.ParseForm(); err != nil {
		return formValues{}, parsedBill{}, "Invalid form data."
	}

	form := formValues{
		BillNumber:     strings.TrimSpace(r.FormValue("bill_number")),
		Title:          strings.TrimSpace(r.FormValue("title")),
		Summary:        strings.TrimSpace(r.FormValue("summary")),
		Status:         r.FormValue("status"),
		Priority:       r.FormValue("priority"),
		PrimarySponsor: strings.TrimSpace(r.FormValue("primary_sponsor")),
		Sponsors:       r.FormValue("sponsors"),
		Committees:     r.FormValue("committees"),
		Topics:         r.FormValue("topics"),
		CategoryIDs:    r.Form["category_ids"],
		AssignedTo:     r.FormValue("assigned_to"),
		IntroducedDate: r.FormValue("introduced_date"),
	}

	if res := inputval.Validate(billInput{Title: form.Title}); res.HasErrors() {
		return form, parsedBill{}, res.First()
	}
	if form.Status != "" && !models.ValidBillStatus(form.Status) {
		return form, parsedBill{}, "Please choose a valid status."
	}
	if form.Priority != "" && !models.ValidBillPriority(form.Priority) {
		return form, parsedBill{}, "Please choose a valid priority."
	}

	p := parsedBill{
		title:          form.Title,
		summary:        h.sanitizer.Sanitize(form.Summary),
		status:         form.Status,
		priority:       form.Priority,
		primarySponsor: form.PrimarySponsor,
		sponsors:       splitList(form.Sponsors),
		committees:     splitList(form.Committees),
		topics:         splitList(form.Topics),
	}

	for _, v := range form.CategoryIDs {
		cid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return form, parsedBill{}, "Invalid category selection."
		}
		p.categoryIDs = append(p.categoryIDs, cid)
	}

	if form.AssignedTo != "" {
		uid, err := primitive.ObjectIDFromHex(form.AssignedTo)
		if err != nil {
			return form, parsedBill{}, "Invalid assignee selection."
		}
		p.assignedTo = &uid
	}

	if form.IntroducedDate != "" {
		d, err := time.Parse("2006-01-02", form.IntroducedDate)
		if err != nil {
			return form, parsedBill{}, "Please enter a valid introduced date."
		}
		p.introducedDate = &d
	}

	return form, p, ""
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, ctx context.Context, sc shared.SessionCtx, bill *models.Bill, errMsg string, form formValues) {
	categories, err := h.Categories.ListBySession(ctx, sc.Session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list categories", err, "A database error occurred.", billsURL(sc))
		return
	}
	members, err := h.Memberships.ListBySessionWithUsers(ctx, sc.Session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list members", err, "A database error occurred.", billsURL(sc))
		return
	}

	title := "New bill"
	if bill != nil {
		title = "Edit " + bill.BillNumber
	}

	templates.Render(w, r, "bill_form", formData{
		BaseVM:     viewdata.NewBaseVM(r, title, billsURL(sc)),
		Session:    sc.Session,
		Bill:       bill,
		Error:      errMsg,
		Statuses:   models.BillStatuses,
		Priorities: models.BillPriorities,
		Categories: categories,
		Members:    members,
		Form:       form,
	})
}
