// internal/app/features/categories/routes.go
package categories

import (
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /sessions/{sessionID}/categories.
func Routes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreatePost)
	r.Post("/{categoryID}", h.HandleUpdatePost)
	r.Post("/{categoryID}/delete", h.HandleDeletePost)

	return r
}
