// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	Users         *userstore.Store
	GoogleEnabled bool // show the "Sign in with Google" button
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		Users:         users,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.AuditLog.Auth(ctx, r, "login_failed", primitive.NilObjectID, false, "user not found")
		h.renderFormWithError(w, r, "Invalid email or password.", email)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db find user for login", err, "A server error occurred.", "/login")
		return
	}

	if u.Status == "disabled" {
		h.AuditLog.Auth(ctx, r, "login_failed", u.ID, false, "account disabled")
		h.renderFormWithError(w, r, "This account has been disabled.", email)
		return
	}

	if u.PasswordHash == "" {
		// OAuth-only account: no password to compare against.
		h.AuditLog.Auth(ctx, r, "login_failed", u.ID, false, "no password set")
		h.renderFormWithError(w, r, "This account signs in with Google.", email)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		h.AuditLog.Auth(ctx, r, "login_failed", u.ID, false, "wrong password")
		h.renderFormWithError(w, r, "Invalid email or password.", email)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{ID: u.ID.Hex()}); err != nil {
		h.ErrLog.LogServerError(w, r, "save login session", err, "A server error occurred.", "/login")
		return
	}

	h.AuditLog.Auth(ctx, r, "login_success", u.ID, true, "")

	http.Redirect(w, r, safeReturnURL(r), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// safeReturnURL returns the form's return target if it is a local path,
// otherwise the dashboard. Absolute URLs are rejected to prevent open
// redirects.
func safeReturnURL(r *http.Request) string {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return "/dashboard"
	}
	return ret
}
