package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/billtrack/internal/app/features/login"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/billtrack/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T, users *userstore.Store) *login.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	// nil audit logger is a no-op
	return login.NewHandler(users, sessionMgr, nil, nil, false, logger)
}

func postLogin(t *testing.T, handler *login.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.HandleLoginPost(rec, req)
	return rec
}

func TestHandleLoginPost_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := userstore.New(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	if _, err := users.Create(ctx, "Pat Jones", "pat@example.com", string(hash), "internal", "member"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	handler := newTestHandler(t, users)
	rec := postLogin(t, handler, url.Values{
		"email":    {"pat@example.com"},
		"password": {"correct horse"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location: got %q, want /dashboard", loc)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie to be set")
	}
}

func TestHandleLoginPost_ReturnURL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := userstore.New(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw-for-testing"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	if _, err := users.Create(ctx, "Sam Rivera", "sam@example.com", string(hash), "internal", "member"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	handler := newTestHandler(t, users)

	cases := []struct {
		name string
		ret  string
		want string
	}{
		{"local path", "/sessions/abc/bills", "/sessions/abc/bills"},
		{"absolute url rejected", "https://evil.example.com/", "/dashboard"},
		{"protocol-relative rejected", "//evil.example.com/", "/dashboard"},
		{"empty", "", "/dashboard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postLogin(t, handler, url.Values{
				"email":    {"sam@example.com"},
				"password": {"pw-for-testing"},
				"return":   {tc.ret},
			})
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
			}
			if loc := rec.Header().Get("Location"); loc != tc.want {
				t.Errorf("Location: got %q, want %q", loc, tc.want)
			}
		})
	}
}
