// internal/app/features/sessions/members.go
package sessions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/billtrack/internal/app/policy/sessionpolicy"
	membershipstore "github.com/dalemusser/billtrack/internal/app/store/memberships"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type membersData struct {
	viewdata.BaseVM
	Session   *models.LegislativeSession
	Members   []membershipstore.MemberDetail
	Roles     []string
	Error     string
	CanManage bool // invite, change roles, remove
	SelfID    string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/members                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// Every member can see the roster; only session admins can change it.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.requireSession(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	h.renderMembers(w, r, ctx, sc, "")
}

func (h *Handler) renderMembers(w http.ResponseWriter, r *http.Request, ctx context.Context, sc sessionCtx, errMsg string) {
	members, err := h.Memberships.ListBySessionWithUsers(ctx, sc.Session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list members", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex())
		return
	}

	templates.Render(w, r, "session_members", membersData{
		BaseVM:    viewdata.NewBaseVM(r, "Members", "/sessions/"+sc.Session.ID.Hex()),
		Session:   sc.Session,
		Members:   members,
		Roles:     authz.RoleNames(),
		Error:     errMsg,
		CanManage: sc.Role.Can(authz.ActionInviteMember),
		SelfID:    sc.UserID.Hex(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/members – invite by email                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleInvitePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.requireWritableSession(w, r, ctx, authz.ActionInviteMember)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse invite form", err, "Invalid form data.", "/sessions/"+sc.Session.ID.Hex()+"/members")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	role := strings.ToLower(strings.TrimSpace(r.FormValue("role")))
	if email == "" {
		h.renderMembers(w, r, ctx, sc, "Please enter the email of the person to invite.")
		return
	}
	if !authz.ValidRoleName(role) {
		h.renderMembers(w, r, ctx, sc, "Please choose a valid role.")
		return
	}

	invitee, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.renderMembers(w, r, ctx, sc, "No account exists for that email. Ask them to sign up first.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db find invitee", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex()+"/members")
		return
	}

	_, err = h.Memberships.Create(ctx, invitee.ID, sc.Session.ID, role, false)
	switch {
	case errors.Is(err, membershipstore.ErrDuplicateMembership):
		h.renderMembers(w, r, ctx, sc, invitee.FullName+" is already a member of this session.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db create membership", err, "A database error occurred.", "/sessions/"+sc.Session.ID.Hex()+"/members")
		return
	}

	h.AuditLog.Admin(ctx, r, "member_invited", sc.UserID, invitee.ID, sc.Session.ID, map[string]string{
		"role": role,
	})
	h.Log.Info("member invited",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("user_id", invitee.ID.Hex()),
		zap.String("role", role))

	http.Redirect(w, r, "/sessions/"+sc.Session.ID.Hex()+"/members", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/members/{membershipID}/role                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRolePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.requireWritableSession(w, r, ctx, authz.ActionUpdateMemberRole)
	if !ok {
		return
	}
	membersURL := "/sessions/" + sc.Session.ID.Hex() + "/members"

	membership, ok := h.memberFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	if err := sessionpolicy.CheckChangeRole(sc.UserID, membership); err != nil {
		h.renderMembers(w, r, ctx, sc, "You cannot change your own role. Ask another admin.")
		return
	}

	role := strings.ToLower(strings.TrimSpace(r.FormValue("role")))
	if !authz.ValidRoleName(role) {
		h.renderMembers(w, r, ctx, sc, "Please choose a valid role.")
		return
	}

	if err := h.Memberships.UpdateRole(ctx, membership.ID, role); err != nil {
		h.ErrLog.LogServerError(w, r, "db update member role", err, "A database error occurred.", membersURL)
		return
	}

	h.AuditLog.Admin(ctx, r, "member_role_changed", sc.UserID, membership.UserID, sc.Session.ID, map[string]string{
		"from": membership.Role,
		"to":   role,
	})

	http.Redirect(w, r, membersURL, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/members/{membershipID}/remove                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRemovePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.requireWritableSession(w, r, ctx, authz.ActionRemoveMember)
	if !ok {
		return
	}
	membersURL := "/sessions/" + sc.Session.ID.Hex() + "/members"

	membership, ok := h.memberFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	if err := sessionpolicy.CheckRemoveMember(sc.UserID, membership); err != nil {
		h.renderMembers(w, r, ctx, sc, "You cannot remove yourself. Ask another admin, or archive the session.")
		return
	}

	if err := h.Memberships.Delete(ctx, membership.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "db delete membership", err, "A database error occurred.", membersURL)
		return
	}

	h.AuditLog.Admin(ctx, r, "member_removed", sc.UserID, membership.UserID, sc.Session.ID, map[string]string{
		"role": membership.Role,
	})
	h.Log.Info("member removed",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("user_id", membership.UserID.Hex()))

	http.Redirect(w, r, membersURL, http.StatusSeeOther)
}

// memberFromPath loads the {membershipID} membership and verifies it belongs
// to this session, so a crafted URL cannot touch another session's roster.
func (h *Handler) memberFromPath(w http.ResponseWriter, r *http.Request, ctx context.Context, sc sessionCtx) (*models.Membership, bool) {
	membersURL := "/sessions/" + sc.Session.ID.Hex() + "/members"

	mid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "membershipID"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad membership id", err, "That member could not be found.", membersURL)
		return nil, false
	}

	membership, err := h.Memberships.GetByID(ctx, mid)
	switch {
	case errors.Is(err, membershipstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "membership not found", err, "That member could not be found.", membersURL)
		return nil, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "db load membership", err, "A database error occurred.", membersURL)
		return nil, false
	}

	if membership.SessionID != sc.Session.ID {
		h.ErrLog.LogNotFound(w, r, "membership belongs to another session", nil, "That member could not be found.", membersURL)
		return nil, false
	}

	return membership, true
}
