// internal/app/features/bills/handler.go
package bills

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	"github.com/dalemusser/billtrack/internal/app/features/shared"
	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	categorystore "github.com/dalemusser/billtrack/internal/app/store/categories"
	hearingstore "github.com/dalemusser/billtrack/internal/app/store/hearings"
	jurisdictionstore "github.com/dalemusser/billtrack/internal/app/store/jurisdictions"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Storage  storage.Store

	Bills         *billstore.Store
	Categories    *categorystore.Store
	Hearings      *hearingstore.Store
	Users         *userstore.Store
	Memberships   *membershipstore.Store
	Jurisdictions *jurisdictionstore.Store

	// Bill summaries are pasted from legislative sites and may carry
	// markup; sanitize to a safe subset before storing.
	sanitizer *bluemonday.Policy

	guard shared.SessionGuard
}

func NewHandler(db *mongo.Database, store storage.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		ErrLog:        errLog,
		AuditLog:      audit,
		Storage:       store,
		Bills:         billstore.New(db),
		Categories:    categorystore.New(db),
		Hearings:      hearingstore.New(db),
		Users:         userstore.New(db),
		Memberships:   membershipstore.New(db),
		Jurisdictions: jurisdictionstore.New(db),
		sanitizer:     bluemonday.UGCPolicy(),
		guard: shared.SessionGuard{
			Sessions: sessionstore.New(db),
			Gate:     authz.NewGate(membershipstore.New(db)),
			ErrLog:   errLog,
		},
	}
}

func billsURL(sc shared.SessionCtx) string {
	return "/sessions/" + sc.Session.ID.Hex() + "/bills"
}

// billFromPath loads the {billID} bill and verifies it belongs to this
// session.
func (h *Handler) billFromPath(w http.ResponseWriter, r *http.Request, ctx context.Context, sc shared.SessionCtx) (*models.Bill, bool) {
	bid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "billID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad bill id", err, "That bill could not be found.", billsURL(sc))
		return nil, false
	}

	bill, err := h.Bills.GetByID(ctx, bid)
	switch {
	case errors.Is(err, billstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "bill not found", err, "That bill could not be found.", billsURL(sc))
		return nil, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db load bill", err, "A database error occurred.", billsURL(sc))
		return nil, false
	}

	if bill.SessionID != sc.Session.ID {
		h.ErrLog.LogNotFound(w, r, "bill belongs to another session", nil, "That bill could not be found.", billsURL(sc))
		return nil, false
	}

	return bill, true
}
