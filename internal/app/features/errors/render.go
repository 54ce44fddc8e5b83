// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

func userContext(r *http.Request) (signed bool, role, name string) {
	u, ok := auth.CurrentUser(r)
	if ok && u != nil {
		return true, u.Role, u.Name
	}
	return false, "", ""
}

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it defaults to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	signed, role, name := userContext(r)
	if backURL == "" {
		backURL = "/login"
	}
	templates.Render(w, r, "error_forbidden", pageData{
		Title:      "Sign in required",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    "Please sign in to continue.",
		BackURL:    backURL,
	})
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	signed, role, name := userContext(r)
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	templates.Render(w, r, "error_forbidden", pageData{
		Title:      "Access denied",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	})
}

// RenderNotFound shows the 404 page with a message. Membership-gated
// resources render this for outsiders, so probing URLs reveals nothing.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	signed, role, name := userContext(r)
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	if msg == "" {
		msg = "The page you're looking for doesn't exist."
	}
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_notfound", pageData{
		Title:      "Not found",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	})
}
