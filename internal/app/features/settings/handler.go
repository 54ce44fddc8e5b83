// internal/app/features/settings/handler.go
//
// Account settings: profile (name, default jurisdiction) and password
// changes. Google-only accounts have no password to change.
package settings

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	jurisdictionstore "github.com/dalemusser/billtrack/internal/app/store/jurisdictions"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/inputval"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	Users         *userstore.Store
	Jurisdictions *jurisdictionstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		ErrLog:        errLog,
		Users:         userstore.New(db),
		Jurisdictions: jurisdictionstore.New(db),
	}
}

type pageData struct {
	viewdata.BaseVM
	User          *models.User
	Jurisdictions []models.Jurisdiction
	HasPassword   bool
	ProfileError  string
	ProfileSaved  bool
	PasswordError string
	PasswordSaved bool
}

type profileInput struct {
	FullName string `validate:"required,min=2,max=100" label:"Full name"`
}

type passwordInput struct {
	// bcrypt rejects inputs over 72 bytes, so the max below is a hard limit.
	NewPassword string `validate:"required,min=8,max=72" label:"New password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /settings                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, jurisdictions, ok := h.loadPage(w, r, ctx)
	if !ok {
		return
	}
	h.render(w, r, pageData{
		BaseVM:        viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		User:          user,
		Jurisdictions: jurisdictions,
		HasPassword:   user.PasswordHash != "",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /settings/profile                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleProfilePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, jurisdictions, ok := h.loadPage(w, r, ctx)
	if !ok {
		return
	}
	data := pageData{
		BaseVM:        viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		User:          user,
		Jurisdictions: jurisdictions,
		HasPassword:   user.PasswordHash != "",
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	if res := inputval.Validate(profileInput{FullName: fullName}); res.HasErrors() {
		data.ProfileError = res.First()
		h.render(w, r, data)
		return
	}

	var defaultJurisdiction *primitive.ObjectID
	if v := r.FormValue("default_jurisdiction_id"); v != "" {
		jid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			data.ProfileError = "Please choose a valid jurisdiction."
			h.render(w, r, data)
			return
		}
		defaultJurisdiction = &jid
	}

	if err := h.Users.UpdateProfile(ctx, user.ID, fullName, defaultJurisdiction); err != nil {
		h.ErrLog.LogServerError(w, r, "db update profile", err, "A database error occurred.", "/settings")
		return
	}

	h.Log.Info("profile updated", zap.String("user_id", user.ID.Hex()))

	user.FullName = fullName
	user.DefaultJurisdictionID = defaultJurisdiction
	data.ProfileSaved = true
	h.render(w, r, data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /settings/password                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePasswordPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, jurisdictions, ok := h.loadPage(w, r, ctx)
	if !ok {
		return
	}
	data := pageData{
		BaseVM:        viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		User:          user,
		Jurisdictions: jurisdictions,
		HasPassword:   user.PasswordHash != "",
	}

	if user.PasswordHash == "" {
		data.PasswordError = "This account signs in with Google and has no password."
		h.render(w, r, data)
		return
	}

	current := r.FormValue("current_password")
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		data.PasswordError = "Your current password is incorrect."
		h.render(w, r, data)
		return
	}

	newPassword := r.FormValue("new_password")
	if res := inputval.Validate(passwordInput{NewPassword: newPassword}); res.HasErrors() {
		data.PasswordError = res.First()
		h.render(w, r, data)
		return
	}
	if newPassword != r.FormValue("confirm_password") {
		data.PasswordError = "The new passwords do not match."
		h.render(w, r, data)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "bcrypt hash", err, "Something went wrong. Please try again.", "/settings")
		return
	}

	if err := h.Users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		h.ErrLog.LogServerError(w, r, "db update password", err, "A database error occurred.", "/settings")
		return
	}

	h.Log.Info("password changed", zap.String("user_id", user.ID.Hex()))

	data.PasswordSaved = true
	h.render(w, r, data)
}

func (h *Handler) loadPage(w http.ResponseWriter, r *http.Request, ctx context.Context) (*models.User, []models.Jurisdiction, bool) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/")
		return nil, nil, false
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db load user", err, "A database error occurred.", "/dashboard")
		return nil, nil, false
	}

	jurisdictions, err := h.Jurisdictions.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list jurisdictions", err, "A database error occurred.", "/dashboard")
		return nil, nil, false
	}

	return user, jurisdictions, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	templates.Render(w, r, "settings", data)
}
