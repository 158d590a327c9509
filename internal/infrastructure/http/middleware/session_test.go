package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/guard"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/core/session"
)

type stubRefresher struct {
	calls int
	res   *ports.RefreshResult
	err   error
}

func (s *stubRefresher) Refresh(context.Context, string) (*ports.RefreshResult, error) {
	s.calls++
	return s.res, s.err
}

func newContext(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestBrowserSession_IssuesCookie(t *testing.T) {
	c, rec := newContext(nil)

	if err := BrowserSession(CookieConfig{Name: "sid", MaxAge: time.Hour})(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || !cookies[0].HttpOnly {
		t.Fatalf("expected an http-only sid cookie, got %+v", cookies)
	}
	if BrowserID(c) != cookies[0].Value {
		t.Errorf("context id %q does not match cookie %q", BrowserID(c), cookies[0].Value)
	}
}

func TestBrowserSession_KeepsValidCookie(t *testing.T) {
	const id = "6f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f"
	c, rec := newContext(&http.Cookie{Name: "sid", Value: id})

	if err := BrowserSession(CookieConfig{Name: "sid"})(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if BrowserID(c) != id {
		t.Errorf("expected %s, got %s", id, BrowserID(c))
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no new cookie expected")
	}
}

func TestBrowserSession_ReplacesForgedCookie(t *testing.T) {
	c, _ := newContext(&http.Cookie{Name: "sid", Value: "not-a-uuid"})

	if err := BrowserSession(CookieConfig{Name: "sid"})(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if BrowserID(c) == "not-a-uuid" {
		t.Error("forged id must not be used")
	}
}

func TestLoadSession(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		expiresAt   time.Time
		refresher   *stubRefresher
		wantCalls   int
		wantSession bool
		wantToken   string
	}{
		{
			name:        "fresh token untouched",
			expiresAt:   now.Add(time.Hour),
			refresher:   &stubRefresher{},
			wantSession: true,
			wantToken:   "old",
		},
		{
			name:        "expiring token refreshed",
			expiresAt:   now.Add(10 * time.Second),
			refresher:   &stubRefresher{res: &ports.RefreshResult{AccessToken: "new", ExpiresIn: 900}},
			wantCalls:   1,
			wantSession: true,
			wantToken:   "new",
		},
		{
			name:      "failed refresh ends session",
			expiresAt: now.Add(-time.Minute),
			refresher: &stubRefresher{err: errors.New("unauthorized")},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := session.NewStore(session.NewMemoryRepository())
			err := store.Login(ctx, "browser-a", &domain.Session{
				UserID: "USER001", Role: domain.RoleBackOffice,
				AccessToken: "old", RefreshToken: "refresh", ExpiresAt: tt.expiresAt,
			})
			if err != nil {
				t.Fatal(err)
			}

			c, _ := newContext(nil)
			c.Set(ctxBrowserID, "browser-a")
			mw := LoadSession(SessionConfig{
				Store:         store,
				Refresher:     tt.refresher,
				RefreshWithin: 30 * time.Second,
				Log:           zerolog.Nop(),
				Now:           func() time.Time { return now },
			})
			if err := mw(ok)(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.refresher.calls != tt.wantCalls {
				t.Errorf("expected %d refresh calls, got %d", tt.wantCalls, tt.refresher.calls)
			}
			s := CurrentSession(c)
			if (s != nil) != tt.wantSession {
				t.Fatalf("session presence: want %v, got %+v", tt.wantSession, s)
			}
			if s != nil && s.AccessToken != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, s.AccessToken)
			}

			stored, _ := store.Get(ctx, "browser-a")
			if (stored != nil) != tt.wantSession {
				t.Errorf("stored session presence: want %v, got %+v", tt.wantSession, stored)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	admin := &domain.Session{UserID: "ADMIN001", Role: domain.RoleAdmin}
	user := &domain.Session{UserID: "USER001", Role: domain.RoleBackOffice}

	tests := []struct {
		name     string
		session  *domain.Session
		access   guard.Access
		wantCode int
		wantLoc  string
	}{
		{"anonymous on login", nil, guard.None, http.StatusOK, ""},
		{"signed on user on login", user, guard.None, http.StatusSeeOther, domain.PathMainMenu},
		{"anonymous on screen", nil, guard.Authenticated, http.StatusSeeOther, domain.PathLogin},
		{"back-office on admin screen", user, guard.AdminOnly, http.StatusSeeOther, domain.PathMainMenu},
		{"admin on admin screen", admin, guard.AdminOnly, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(nil)
			SetSession(c, tt.session)

			if err := Guard(tt.access)(ok)(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("expected location %q, got %q", tt.wantLoc, got)
			}
		})
	}
}
