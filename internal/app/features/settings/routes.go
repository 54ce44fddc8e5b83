// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.ServeSettings)
	r.Post("/profile", h.HandleProfilePost)
	r.Post("/password", h.HandlePasswordPost)

	return r
}
