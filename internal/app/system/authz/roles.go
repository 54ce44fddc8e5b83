// internal/app/system/authz/roles.go
package authz

import "strings"

// Role is a session-scoped privilege level. Roles are strictly ordered:
// every capability of a lower role is available to all higher roles, so
// permission checks are a single comparison against a minimum.
type Role int

const (
	RoleViewer Role = iota
	RoleContributor
	RoleManager
	RoleAdmin
)

var roleNames = [...]string{
	RoleViewer:      "viewer",
	RoleContributor: "contributor",
	RoleManager:     "manager",
	RoleAdmin:       "admin",
}

// String returns the canonical lowercase name stored in membership documents.
func (r Role) String() string {
	if r < RoleViewer || r > RoleAdmin {
		return "unknown"
	}
	return roleNames[r]
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole maps a stored role string to its Role. Input is trimmed and
// lowercased; unrecognized strings return ok=false so callers fail closed.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "viewer":
		return RoleViewer, true
	case "contributor":
		return RoleContributor, true
	case "manager":
		return RoleManager, true
	case "admin":
		return RoleAdmin, true
	}
	return RoleViewer, false
}

// ValidRoleName reports whether s names a known session role.
func ValidRoleName(s string) bool {
	_, ok := ParseRole(s)
	return ok
}

// RoleNames returns the role names in ascending privilege order,
// for select inputs and validation messages.
func RoleNames() []string {
	return []string{"viewer", "contributor", "manager", "admin"}
}
