// Package sessionpolicy layers resource-level rules on top of the role gate:
// archived sessions are read-only, and admins cannot remove themselves or
// change their own role (so a session can never orphan itself by losing its
// last admin in a misclick).
package sessionpolicy

import (
	"errors"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrCannotRemoveSelf is returned when an admin tries to remove their own
	// membership. Leaving a session is a different flow with its own checks.
	ErrCannotRemoveSelf = errors.New("you cannot remove your own membership")

	// ErrCannotChangeOwnRole is returned when an admin tries to change their
	// own role. Only another admin can demote them.
	ErrCannotChangeOwnRole = errors.New("you cannot change your own role")

	// ErrSessionArchived is returned for any write against an archived
	// session. Archived sessions stay readable forever.
	ErrSessionArchived = errors.New("archived sessions are read-only")
)

// CheckWrite verifies that role permits action and that the session still
// accepts writes. Viewing is always allowed to members regardless of
// session status.
func CheckWrite(session *models.LegislativeSession, role authz.Role, action authz.Action) error {
	if session.Archived() && action != authz.ActionViewSession {
		return ErrSessionArchived
	}
	if !role.Can(action) {
		return authz.ErrForbidden
	}
	return nil
}

// CheckRemoveMember verifies the actor may remove the target membership.
// The role gate has already established the actor is a session admin; this
// adds the self-removal rule.
func CheckRemoveMember(actorID primitive.ObjectID, target *models.Membership) error {
	if actorID == target.UserID {
		return ErrCannotRemoveSelf
	}
	return nil
}

// CheckChangeRole verifies the actor may change the target membership's role.
// Changing one's own role is refused for the same reason as self-removal: an
// admin demoting themself could leave the session with no admin at all.
func CheckChangeRole(actorID primitive.ObjectID, target *models.Membership) error {
	if actorID == target.UserID {
		return ErrCannotChangeOwnRole
	}
	return nil
}
