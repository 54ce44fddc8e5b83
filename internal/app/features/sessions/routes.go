// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes builds the /sessions router. Category, bill, and hearing routers
// are mounted under /{sessionID} so handlers can read the session from the
// URL.
func Routes(h *Handler, sessionMgr *auth.SessionManager, categories, bills, hearings chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.ServeList)

	// Only global admins may create sessions.
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireRole("admin"))
		r.Get("/new", h.ServeNew)
		r.Post("/new", h.HandleNewPost)
	})

	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.ServeView)
		r.Post("/switch", h.HandleSwitchPost)

		r.Get("/settings", h.ServeSettings)
		r.Post("/settings", h.HandleSettingsPost)
		r.Post("/status", h.HandleStatusPost)
		r.Post("/archive", h.HandleArchivePost)

		r.Get("/members", h.ServeMembers)
		r.Post("/members", h.HandleInvitePost)
		r.Post("/members/{membershipID}/role", h.HandleRolePost)
		r.Post("/members/{membershipID}/remove", h.HandleRemovePost)

		r.Mount("/categories", categories)
		r.Mount("/bills", bills)
		r.Mount("/hearings", hearings)
	})

	return r
}
