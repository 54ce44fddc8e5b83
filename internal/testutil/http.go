package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID              string
	Name            string
	Email           string
	Role            string // global role
	ActiveSessionID string
}

// AdminUser returns a TestUser with the global admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// MemberUser returns a TestUser with the ordinary global member role.
func MemberUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Member",
		Email: "member@test.com",
		Role:  "member",
	}
}

// UserFor returns a TestUser bound to an existing user document, so handler
// tests and fixtures agree on the ObjectID.
func UserFor(id primitive.ObjectID, name, role string) TestUser {
	return TestUser{
		ID:   id.Hex(),
		Name: name,
		Role: role,
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers, bypassing the session middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		ActiveSessionID: user.ActiveSessionID,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewFormRequest creates a POST request carrying URL-encoded form values,
// with a user in context.
func NewFormRequest(target string, form map[string]string, user TestUser) *http.Request {
	vals := url.Values{}
	for k, v := range form {
		vals.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return WithUser(req, user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with assertion helpers.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	if loc := r.Header().Get("Location"); loc != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", loc, expectedLocation)
	}
}

// AssertContains checks that the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
