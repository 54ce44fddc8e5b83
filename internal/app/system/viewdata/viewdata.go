// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the layout header and page titles.
const SiteName = "BillTrack"

// BaseVM contains the common fields for all view models. Embed it in
// feature view models:
//
//	type listData struct {
//	    viewdata.BaseVM
//	    Bills []models.Bill
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string // global role
	UserName   string

	// The user's selected legislative session, for the header switcher.
	ActiveSessionID   string
	ActiveSessionName string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string
}

// NewBaseVM creates a fully populated BaseVM for a page. backDefault is
// used when the request carries no usable back URL.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if user, ok := auth.CurrentUser(r); ok {
		vm.ActiveSessionID = user.ActiveSessionID
		vm.ActiveSessionName = user.ActiveSessionName
	}
	return vm
}
