// internal/app/features/sessions/handler.go
package sessions

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	"github.com/dalemusser/billtrack/internal/app/features/shared"
	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	hearingstore "github.com/dalemusser/billtrack/internal/app/store/hearings"
	jurisdictionstore "github.com/dalemusser/billtrack/internal/app/store/jurisdictions"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/billtrack/internal/app/store/sessions"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger

	Sessions      *sessionstore.Store
	Memberships   *membershipstore.Store
	Jurisdictions *jurisdictionstore.Store
	Users         *userstore.Store
	Bills         *billstore.Store
	Hearings      *hearingstore.Store

	guard shared.SessionGuard
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	memberships := membershipstore.New(db)
	sessions := sessionstore.New(db)
	return &Handler{
		Log:           logger,
		ErrLog:        errLog,
		AuditLog:      audit,
		Sessions:      sessions,
		Memberships:   memberships,
		Jurisdictions: jurisdictionstore.New(db),
		Users:         userstore.New(db),
		Bills:         billstore.New(db),
		Hearings:      hearingstore.New(db),
		guard: shared.SessionGuard{
			Sessions: sessions,
			Gate:     authz.NewGate(memberships),
			ErrLog:   errLog,
		},
	}
}

type sessionCtx = shared.SessionCtx

func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request, ctx context.Context, action authz.Action) (sessionCtx, bool) {
	return h.guard.Require(w, r, ctx, action)
}

func (h *Handler) requireWritableSession(w http.ResponseWriter, r *http.Request, ctx context.Context, action authz.Action) (sessionCtx, bool) {
	return h.guard.RequireWritable(w, r, ctx, action)
}
