// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/billtrack/internal/app/features/errors"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateCookieName = "billtrack_oauth_state"
	stateMaxAge     = 10 * time.Minute
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Users      *userstore.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://billtrack.example.com/auth/google/callback"

	stateCodec *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler. The state for the OAuth
// round-trip is kept in a signed cookie rather than the DB, so the flow
// works without any server-side state.
func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL, stateKey string,
	logger *zap.Logger,
) *Handler {
	codec := securecookie.New([]byte(stateKey), nil)
	codec.MaxAge(int(stateMaxAge.Seconds()))

	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		AuditLog:     audit,
		Users:        users,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
		stateCodec:   codec,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// statePayload travels in the signed state cookie across the OAuth
// round-trip.
type statePayload struct {
	State     string `json:"state"`
	ReturnURL string `json:"return_url"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	payload := statePayload{
		State:     uuid.NewString(),
		ReturnURL: query.Get(r, "return"),
	}

	encoded, err := h.stateCodec.Encode(stateCookieName, payload)
	if err != nil {
		h.Log.Error("encode oauth state cookie", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/auth/google",
		MaxAge:   int(stateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(payload.State), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo is the subset of Google's userinfo response we care about.
type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "oauth state cookie missing", err, "Sign-in expired. Please try again.", "/login")
		return
	}
	clearStateCookie(w)

	var payload statePayload
	if err := h.stateCodec.Decode(stateCookieName, cookie.Value, &payload); err != nil {
		h.ErrLog.LogBadRequest(w, r, "oauth state cookie invalid", err, "Sign-in expired. Please try again.", "/login")
		return
	}

	if got := query.Get(r, "state"); got == "" || got != payload.State {
		h.ErrLog.LogBadRequest(w, r, "oauth state mismatch", nil, "Sign-in could not be verified. Please try again.", "/login")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		// User likely cancelled the consent screen.
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cfg := h.oauth2Config()
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "oauth code exchange", err, "Google sign-in failed. Please try again.", "/login")
		return
	}

	info, err := fetchUserInfo(ctx, cfg, token)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "fetch google userinfo", err, "Google sign-in failed. Please try again.", "/login")
		return
	}

	if info.Email == "" || !info.VerifiedEmail {
		h.AuditLog.Auth(ctx, r, "login_failed", primitive.NilObjectID, false, "google email unverified")
		h.ErrLog.LogBadRequest(w, r, "google email unverified", nil, "Your Google email address is not verified.", "/login")
		return
	}

	u, err := h.Users.GetByEmail(ctx, info.Email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		name := info.Name
		if name == "" {
			name = info.Email
		}
		u, err = h.Users.Create(ctx, name, info.Email, "", "google", "member")
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			// Raced with another signup for the same email.
			u, err = h.Users.GetByEmail(ctx, info.Email)
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "db create google user", err, "A server error occurred.", "/login")
			return
		}
		h.AuditLog.Auth(ctx, r, "signup", u.ID, true, "")
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db find user for google login", err, "A server error occurred.", "/login")
		return
	}

	if u.Status == "disabled" {
		h.AuditLog.Auth(ctx, r, "login_failed", u.ID, false, "account disabled")
		uierrors.RenderForbidden(w, r, "This account has been disabled.", "/login")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{ID: u.ID.Hex()}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session after google login", err, "A server error occurred.", "/login")
		return
	}
	h.AuditLog.Auth(ctx, r, "login_success", u.ID, true, "")

	dest := payload.ReturnURL
	if dest == "" || !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") {
		dest = "/dashboard"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func fetchUserInfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*googleUserInfo, error) {
	client := cfg.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
