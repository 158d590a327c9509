package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

type stubValidator struct {
	claims map[string]*ports.TokenClaims
	err    error
}

func (s *stubValidator) Validate(_ context.Context, token string) (*ports.TokenClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	claims, ok := s.claims[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

func newValidator() *stubValidator {
	return &stubValidator{claims: map[string]*ports.TokenClaims{
		"admin-token": {UserID: "ADMIN001", UserType: "A", SessionID: "s1", Use: "access"},
		"user-token":  {UserID: "USER001", UserType: "U", SessionID: "s2", Use: "access"},
	}}
}

func runAuth(t *testing.T, v TokenValidator, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(v)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	called := false
	rec := runAuth(t, newValidator(), "Bearer admin-token", func(c echo.Context) error {
		called = true
		if c.Get("user_id") != "ADMIN001" {
			t.Fatalf("user_id not set")
		}
		if c.Get("role") != string(domain.RoleAdmin) {
			t.Fatalf("role not set, got %v", c.Get("role"))
		}
		if c.Get("token") != "admin-token" {
			t.Fatalf("token not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RegularUserIsBackOffice(t *testing.T) {
	rec := runAuth(t, newValidator(), "bearer user-token", func(c echo.Context) error {
		if c.Get("role") != string(domain.RoleBackOffice) {
			t.Fatalf("expected back-office role, got %v", c.Get("role"))
		}
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token abc",
		"empty token":    "Bearer ",
		"unknown token":  "Bearer not-a-token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := runAuth(t, newValidator(), header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_StoreFailureIsNotUnauthorized(t *testing.T) {
	v := &stubValidator{err: errors.New("redis down")}
	rec := runAuth(t, v, "Bearer admin-token", func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
