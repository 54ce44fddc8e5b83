// internal/app/features/shared/templates.go
//
// Shared layout partials used by every page template: the document head,
// the nav bar with the session switcher, and the footer. Feature pages
// open with {{template "page_header" .}} and close with
// {{template "page_footer" .}}.
package shared

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "shared",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
