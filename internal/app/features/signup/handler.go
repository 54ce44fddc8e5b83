// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/billtrack/internal/app/system/inputval"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Users      *userstore.Store
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Users:      users,
	}
}

type signupFormData struct {
	viewdata.BaseVM
	Error    string
	FullName string
	Email    string
}

// signupInput is validated with inputval struct tags.
type signupInput struct {
	FullName string `validate:"required,min=2,max=100" label:"Full name"`
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required,min=8,max=72" label:"Password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM: viewdata.NewBaseVM(r, "Sign up", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse signup form", err, "Invalid form data.", "/signup")
		return
	}

	in := signupInput{
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}

	if res := inputval.Validate(in); res.HasErrors() {
		h.renderFormWithError(w, r, res.First(), in)
		return
	}

	// bcrypt rejects inputs over 72 bytes, so the max above is a hard limit.
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash signup password", err, "A server error occurred.", "/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, in.FullName, in.Email, string(hash), "internal", "member")
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.renderFormWithError(w, r, "An account with that email already exists.", in)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db create user", err, "A server error occurred.", "/signup")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{ID: u.ID.Hex()}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session after signup", err, "A server error occurred.", "/login")
		return
	}

	h.AuditLog.Auth(ctx, r, "signup", u.ID, true, "")

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg string, in signupInput) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:   viewdata.NewBaseVM(r, "Sign up", "/"),
		Error:    msg,
		FullName: in.FullName,
		Email:    in.Email,
	})
}
