// Package middleware holds the terminal's per-request session plumbing:
// the browser cookie, the Session lookup with token refresh and the page guard.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/guard"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/core/session"
	"github.com/carddemo/terminal/internal/pkg/metrics"
)

const (
	ctxBrowserID = "browser_id"
	ctxSession   = "session"
)

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// BrowserSession makes sure every request carries a browser id, issuing a
// new cookie when the request has none or an unparsable one.
func BrowserSession(cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.Name); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cfg.Name,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(cfg.MaxAge / time.Second),
				})
			}
			c.Set(ctxBrowserID, id)
			return next(c)
		}
	}
}

// Refresher renews an access token from a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error)
}

// SessionConfig wires LoadSession.
type SessionConfig struct {
	Store     *session.Store
	Refresher Refresher
	// RefreshWithin renews tokens that expire sooner than this.
	RefreshWithin time.Duration
	Log           zerolog.Logger
	Now           func() time.Time
}

// LoadSession puts the Session of the browser into the context, renewing
// its access token first when it is about to expire. A failed renewal
// destroys the Session.
func LoadSession(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			id := BrowserID(c)

			s, err := cfg.Store.Get(ctx, id)
			if err != nil {
				return err
			}

			if s != nil && s.ExpiresWithin(cfg.Now(), cfg.RefreshWithin) {
				s, err = refresh(ctx, cfg, id, s)
				if err != nil {
					return err
				}
			}

			c.Set(ctxSession, s)
			return next(c)
		}
	}
}

func refresh(ctx context.Context, cfg SessionConfig, id string, s *domain.Session) (*domain.Session, error) {
	res, err := cfg.Refresher.Refresh(ctx, s.RefreshToken)
	if err != nil {
		cfg.Log.Warn().Err(err).Str("user_id", s.UserID).Msg("token refresh failed, ending session")
		metrics.SessionsTotal.WithLabelValues("expired").Inc()
		if lerr := cfg.Store.Logout(ctx, id); lerr != nil {
			return nil, lerr
		}
		return nil, nil
	}

	expiresAt := cfg.Now().Add(time.Duration(res.ExpiresIn) * time.Second)
	next, err := cfg.Store.Refresh(ctx, id, res.AccessToken, expiresAt)
	if err != nil {
		return nil, err
	}
	metrics.SessionsTotal.WithLabelValues("refresh").Inc()
	return next, nil
}

// Guard lets the request through only when the Session satisfies access;
// otherwise it redirects to the login page or the landing menu.
func Guard(access guard.Access) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Decide(CurrentSession(c), access)
			if d.Outcome != guard.Render {
				return c.Redirect(http.StatusSeeOther, d.Location)
			}
			return next(c)
		}
	}
}

// BrowserID returns the id set by BrowserSession.
func BrowserID(c echo.Context) string {
	id, _ := c.Get(ctxBrowserID).(string)
	return id
}

// CurrentSession returns the Session set by LoadSession, nil when anonymous.
func CurrentSession(c echo.Context) *domain.Session {
	s, _ := c.Get(ctxSession).(*domain.Session)
	return s
}

// SetSession replaces the Session seen by the rest of the request.
func SetSession(c echo.Context, s *domain.Session) {
	c.Set(ctxSession, s)
}
