package sessionpolicy

import (
	"errors"
	"testing"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCheckWrite_ActiveSession(t *testing.T) {
	s := &models.LegislativeSession{Status: models.SessionActive}

	if err := CheckWrite(s, authz.RoleContributor, authz.ActionCreateBill); err != nil {
		t.Errorf("contributor creating bill: %v", err)
	}
	if err := CheckWrite(s, authz.RoleViewer, authz.ActionCreateBill); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("viewer creating bill: err = %v, want ErrForbidden", err)
	}
}

func TestCheckWrite_ArchivedSession(t *testing.T) {
	s := &models.LegislativeSession{Status: models.SessionArchived}

	if err := CheckWrite(s, authz.RoleAdmin, authz.ActionCreateBill); !errors.Is(err, ErrSessionArchived) {
		t.Errorf("admin writing to archived session: err = %v, want ErrSessionArchived", err)
	}
	if err := CheckWrite(s, authz.RoleViewer, authz.ActionViewSession); err != nil {
		t.Errorf("viewing archived session should stay allowed: %v", err)
	}
}

func TestCheckRemoveMember(t *testing.T) {
	actor := primitive.NewObjectID()
	other := primitive.NewObjectID()

	if err := CheckRemoveMember(actor, &models.Membership{UserID: other}); err != nil {
		t.Errorf("removing another member: %v", err)
	}
	if err := CheckRemoveMember(actor, &models.Membership{UserID: actor}); !errors.Is(err, ErrCannotRemoveSelf) {
		t.Errorf("self-removal: err = %v, want ErrCannotRemoveSelf", err)
	}
}

func TestCheckChangeRole(t *testing.T) {
	actor := primitive.NewObjectID()
	other := primitive.NewObjectID()

	if err := CheckChangeRole(actor, &models.Membership{UserID: other}); err != nil {
		t.Errorf("changing another member's role: %v", err)
	}
	if err := CheckChangeRole(actor, &models.Membership{UserID: actor}); !errors.Is(err, ErrCannotChangeOwnRole) {
		t.Errorf("self role change: err = %v, want ErrCannotChangeOwnRole", err)
	}
}
