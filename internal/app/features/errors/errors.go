// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
}

// Handler renders the standalone error pages. No DB needed.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	role, name, _, signedIn := authz.UserCtx(r)
	templates.Render(w, r, "error_forbidden", pageData{
		Title:      "Access denied",
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    "You don't have permission to view this page.",
		BackURL:    "/",
	})
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	role, name, _, signedIn := authz.UserCtx(r)
	templates.Render(w, r, "error_forbidden", pageData{
		Title:      "Sign in required",
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    "Please sign in to continue.",
		BackURL:    "/login",
	})
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	role, name, _, signedIn := authz.UserCtx(r)
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_notfound", pageData{
		Title:      "Not found",
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    "The page you're looking for doesn't exist.",
		BackURL:    "/",
	})
}
