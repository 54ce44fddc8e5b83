// internal/app/features/hearings/routes.go
package hearings

import (
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /sessions/{sessionID}/hearings.
func Routes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleNewPost)

	r.Route("/{hearingID}", func(r chi.Router) {
		r.Get("/", h.ServeView)
		r.Get("/edit", h.ServeEdit)
		r.Post("/edit", h.HandleEditPost)
		r.Post("/delete", h.HandleDeletePost)
	})

	return r
}
