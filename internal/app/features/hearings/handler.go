// internal/app/features/hearings/handler.go
package hearings

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	"github.com/dalemusser/billtrack/internal/app/features/shared"
	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	hearingstore "github.com/dalemusser/billtrack/internal/app/store/hearings"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger

	Hearings *hearingstore.Store
	Bills    *billstore.Store

	guard shared.SessionGuard
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Hearings: hearingstore.New(db),
		Bills:    billstore.New(db),
		guard: shared.SessionGuard{
			Sessions: sessionstore.New(db),
			Gate:     authz.NewGate(membershipstore.New(db)),
			ErrLog:   errLog,
		},
	}
}

func hearingsURL(sc shared.SessionCtx) string {
	return "/sessions/" + sc.Session.ID.Hex() + "/hearings"
}

// hearingFromPath loads the {hearingID} hearing and verifies it belongs to
// this session.
func (h *Handler) hearingFromPath(w http.ResponseWriter, r *http.Request, ctx context.Context, sc shared.SessionCtx) (*models.Hearing, bool) {
	hid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "hearingID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad hearing id", err, "That hearing could not be found.", hearingsURL(sc))
		return nil, false
	}

	hearing, err := h.Hearings.GetByID(ctx, hid)
	switch {
	case errors.Is(err, hearingstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "hearing not found", err, "That hearing could not be found.", hearingsURL(sc))
		return nil, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db load hearing", err, "A database error occurred.", hearingsURL(sc))
		return nil, false
	}

	if hearing.SessionID != sc.Session.ID {
		h.ErrLog.LogNotFound(w, r, "hearing belongs to another session", nil, "That hearing could not be found.", hearingsURL(sc))
		return nil, false
	}

	return hearing, true
}
