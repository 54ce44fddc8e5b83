package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/billtrack/internal/app/features/logout"
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	// nil audit logger is a no-op
	return logout.NewHandler(sessionMgr, nil, logger)
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location: got %q, want %q", location, "/")
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected the session cookie to be expired (MaxAge < 0)")
	}
}

func TestServeLogout_HTMXGetsHXRedirect(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", got, "/")
	}
}
