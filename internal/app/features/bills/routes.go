// internal/app/features/bills/routes.go
package bills

import (
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /sessions/{sessionID}/bills.
func Routes(h *Handler, sessionMgr *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleNewPost)

	r.Route("/{billID}", func(r chi.Router) {
		r.Get("/", h.ServeView)
		r.Get("/edit", h.ServeEdit)
		r.Post("/edit", h.HandleEditPost)
		r.Get("/upload", h.ServeUpload)
		r.Post("/upload", h.HandleUploadPost)
		r.Get("/download", h.HandleDownload)
		r.Post("/delete", h.HandleDeletePost)
	})

	return r
}
