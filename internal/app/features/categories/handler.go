// internal/app/features/categories/handler.go
package categories

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	"github.com/dalemusser/billtrack/internal/app/features/shared"
	categorystore "github.com/dalemusser/billtrack/internal/app/store/categories"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/inputval"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger

	Categories *categorystore.Store

	guard shared.SessionGuard
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		AuditLog:   audit,
		Categories: categorystore.New(db),
		guard: shared.SessionGuard{
			Sessions: sessionstore.New(db),
			Gate:     authz.NewGate(membershipstore.New(db)),
			ErrLog:   errLog,
		},
	}
}

type categoryRow struct {
	Category  models.SessionCategory
	BillCount int64
}

type listData struct {
	viewdata.BaseVM
	Session   *models.LegislativeSession
	Rows      []categoryRow
	Error     string
	CanCreate bool // managers shape the taxonomy
	CanEdit   bool // contributors keep entries accurate
	CanDelete bool
}

type categoryInput struct {
	Name string `validate:"required,min=2,max=80" label:"Name"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/categories                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.Require(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	h.renderList(w, r, ctx, sc, "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, ctx context.Context, sc shared.SessionCtx, errMsg string) {
	cats, err := h.Categories.ListBySession(ctx, sc.Session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list categories", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	rows := make([]categoryRow, 0, len(cats))
	for _, c := range cats {
		n, err := h.Categories.CountBills(ctx, c.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "db count category bills", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
			return
		}
		rows = append(rows, categoryRow{Category: c, BillCount: n})
	}

	templates.Render(w, r, "categories_list", listData{
		BaseVM:    viewdata.NewBaseVM(r, "Categories", "/sessions/"+sc.Session.ID.Hex()),
		Session:   sc.Session,
		Rows:      rows,
		Error:     errMsg,
		CanCreate: sc.Role.Can(authz.ActionCreateCategory) && !sc.Session.Archived(),
		CanEdit:   sc.Role.Can(authz.ActionUpdateCategory) && !sc.Session.Archived(),
		CanDelete: sc.Role.Can(authz.ActionDeleteCategory) && !sc.Session.Archived(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/categories – create (managers)                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionCreateCategory)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse category form", err, "Invalid form data.", categoriesURL(sc))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if res := inputval.Validate(categoryInput{Name: name}); res.HasErrors() {
		h.renderList(w, r, ctx, sc, res.First())
		return
	}

	order, _ := strconv.Atoi(r.FormValue("order"))

	_, err := h.Categories.Create(ctx, sc.Session.ID, name, "",
		strings.TrimSpace(r.FormValue("description")),
		strings.TrimSpace(r.FormValue("color")), order)
	switch {
	case errors.Is(err, categorystore.ErrDuplicateSlug):
		h.renderList(w, r, ctx, sc, "A category with that name already exists in this session.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db create category", err, "A database error occurred.", categoriesURL(sc))
		return
	}

	http.Redirect(w, r, categoriesURL(sc), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/categories/{categoryID} – update (contributors)  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionUpdateCategory)
	if !ok {
		return
	}

	cat, ok := h.categoryFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse category form", err, "Invalid form data.", categoriesURL(sc))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if res := inputval.Validate(categoryInput{Name: name}); res.HasErrors() {
		h.renderList(w, r, ctx, sc, res.First())
		return
	}

	order, _ := strconv.Atoi(r.FormValue("order"))

	err := h.Categories.Update(ctx, cat.ID, name,
		strings.TrimSpace(r.FormValue("description")),
		strings.TrimSpace(r.FormValue("color")), order)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db update category", err, "A database error occurred.", categoriesURL(sc))
		return
	}

	http.Redirect(w, r, categoriesURL(sc), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/categories/{categoryID}/delete – managers        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionDeleteCategory)
	if !ok {
		return
	}

	cat, ok := h.categoryFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	// Delete also clears the category from every bill that references it.
	if err := h.Categories.Delete(ctx, cat.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "db delete category", err, "A database error occurred.", categoriesURL(sc))
		return
	}

	h.Log.Info("category deleted",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("category_id", cat.ID.Hex()),
		zap.String("slug", cat.Slug))

	http.Redirect(w, r, categoriesURL(sc), http.StatusSeeOther)
}

func categoriesURL(sc shared.SessionCtx) string {
	return "/sessions/" + sc.Session.ID.Hex() + "/categories"
}

// categoryFromPath loads the {categoryID} category and verifies it belongs
// to this session.
func (h *Handler) categoryFromPath(w http.ResponseWriter, r *http.Request, ctx context.Context, sc shared.SessionCtx) (*models.SessionCategory, bool) {
	cid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "categoryID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad category id", err, "That category could not be found.", categoriesURL(sc))
		return nil, false
	}

	cat, err := h.Categories.GetByID(ctx, cid)
	switch {
	case errors.Is(err, categorystore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "category not found", err, "That category could not be found.", categoriesURL(sc))
		return nil, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db load category", err, "A database error occurred.", categoriesURL(sc))
		return nil, false
	}

	if cat.SessionID != sc.Session.ID {
		h.ErrLog.LogNotFound(w, r, "category belongs to another session", nil, "That category could not be found.", categoriesURL(sc))
		return nil, false
	}

	return cat, true
}
