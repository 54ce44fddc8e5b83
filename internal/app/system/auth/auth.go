package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
 | Session user                                                               |
 *─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we cache in the session cookie and inject into
// r.Context() on every request. ActiveSessionID/Name mirror the user's
// currently selected legislative session so layouts can render the session
// switcher without a DB query.
type SessionUser struct {
	ID                string
	Name              string
	Email             string
	Role              string // global role: "admin" | "member"
	ActiveSessionID   string
	ActiveSessionName string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user in context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user directly into the request context, bypassing
// session middleware. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// UserFetcher loads fresh user data by ID on each request, so role changes
// and disabled accounts take effect without waiting for re-login.
// Return nil when the user no longer exists or may not sign in.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

/*─────────────────────────────────────────────────────────────────────────────*
 | Session manager                                                            |
 *─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionManager owns the cookie store and the auth middleware chain.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager. The secure flag
// controls Secure + SameSite: production uses Secure/None for cross-site
// HTTPS, local dev uses Lax so http://localhost works.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "billtrack-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher enables per-request user refresh in LoadSessionUser.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// SignIn marks the session authenticated and stores the user ID. Everything
// else about the user is re-fetched per request, so the cookie stays small
// and stale data cannot linger.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
 | Middleware                                                                 |
 *─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the user into context if they are signed in.
// With a UserFetcher set, the user record is re-fetched each request; a nil
// result (deleted or disabled account) leaves the request unauthenticated.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.name)

		isAuth, _ := sess.Values[isAuthKey].(bool)
		userID, _ := sess.Values[userIDKey].(string)
		if !isAuth || userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if sm.fetcher != nil {
			if u := sm.fetcher.FetchUser(r.Context(), userID); u != nil {
				r = withUser(r, u)
			}
			next.ServeHTTP(w, r)
			return
		}

		r = withUser(r, &SessionUser{ID: userID})
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures a user is in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r)
	})
}

// RequireRole ensures the signed-in user carries one of the allowed GLOBAL
// roles. Session-scoped permissions are checked by the membership gate in
// handlers, not here.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			if _, has := set[strings.ToLower(u.Role)]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
 | Helpers                                                                    |
 *─────────────────────────────────────────────────────────────────────────────*/

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
