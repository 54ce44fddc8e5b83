// internal/app/features/bills/list.go
package bills

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/paging"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type billRow struct {
	Bill       models.Bill
	Assignee   string
	Categories []string
}

type listData struct {
	viewdata.BaseVM
	Session    *models.LegislativeSession
	Rows       []billRow
	Total      int64
	Statuses   []string
	Priorities []string
	Categories []models.SessionCategory

	// Current filter state, echoed back into the form.
	FilterStatus   string
	FilterPriority string
	FilterCategory string
	Search         string

	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
	FilterQS   string // filter params to carry through cursor links

	CanCreate bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/bills                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.Require(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	filter := billstore.ListFilter{
		SessionID: sc.Session.ID,
		Status:    query.Get(r, "status"),
		Priority:  query.Get(r, "priority"),
		Search:    strings.TrimSpace(query.Get(r, "q")),
	}
	if v := query.Get(r, "category"); v != "" {
		if cid, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.CategoryID = &cid
		}
	}
	if query.Get(r, "mine") == "1" {
		uid := sc.UserID
		filter.AssignedTo = &uid
	}

	before := query.Get(r, "before")
	after := query.Get(r, "after")
	cfg := paging.ConfigureKeyset(before, after)

	rows, err := h.Bills.List(ctx, filter, cfg)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list bills", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}
	page := paging.TrimPage(&rows, before, after)

	total, err := h.Bills.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db count bills", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	categories, err := h.Categories.ListBySession(ctx, sc.Session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list categories", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}
	catName := make(map[primitive.ObjectID]string, len(categories))
	for _, c := range categories {
		catName[c.ID] = c.Name
	}

	// Resolve assignee names in one query.
	var assigneeIDs []primitive.ObjectID
	for _, b := range rows {
		if b.AssignedTo != nil {
			assigneeIDs = append(assigneeIDs, *b.AssignedTo)
		}
	}
	assignees, err := h.Users.GetManyByIDs(ctx, assigneeIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db load assignees", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	display := make([]billRow, 0, len(rows))
	for _, b := range rows {
		row := billRow{Bill: b}
		if b.AssignedTo != nil {
			if u, found := assignees[*b.AssignedTo]; found {
				row.Assignee = u.FullName
			}
		}
		for _, cid := range b.CategoryIDs {
			if name, found := catName[cid]; found {
				row.Categories = append(row.Categories, name)
			}
		}
		display = append(display, row)
	}

	prev, next := paging.BuildCursors(rows,
		func(b models.Bill) string { return b.TitleCI },
		func(b models.Bill) primitive.ObjectID { return b.ID })

	templates.Render(w, r, "bills_list", listData{
		BaseVM:         viewdata.NewBaseVM(r, "Bills", "/sessions/"+sc.Session.ID.Hex()),
		Session:        sc.Session,
		Rows:           display,
		Total:          total,
		Statuses:       models.BillStatuses,
		Priorities:     models.BillPriorities,
		Categories:     categories,
		FilterStatus:   filter.Status,
		FilterPriority: filter.Priority,
		FilterCategory: query.Get(r, "category"),
		Search:         filter.Search,
		HasPrev:        page.HasPrev,
		HasNext:        page.HasNext,
		PrevCursor:     prev,
		NextCursor:     next,
		FilterQS:       filterQueryString(r),
		CanCreate:      sc.Role.Can(authz.ActionCreateBill) && !sc.Session.Archived(),
	})
}

// filterQueryString rebuilds the filter portion of the query string so
// cursor links preserve the active filters.
func filterQueryString(r *http.Request) string {
	vals := url.Values{}
	for _, key := range []string{"status", "priority", "category", "q", "mine"} {
		if v := query.Get(r, key); v != "" {
			vals.Set(key, v)
		}
	}
	if len(vals) == 0 {
		return ""
	}
	return "&" + vals.Encode()
}
