package home

import (
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the public pages.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		Log: logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
	}

	templates.Render(w, r, "home", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /about                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeAbout(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "About", "/"),
	}

	templates.Render(w, r, "about", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /terms                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTerms(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Terms of Use", "/"),
	}

	templates.Render(w, r, "terms", data)
}
