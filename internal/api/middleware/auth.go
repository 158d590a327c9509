package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/api/handler"
	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

// TokenValidator checks a bearer token, including revocation.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*ports.TokenClaims, error)
}

// Auth validates the bearer token and injects user_id, role and token into
// the echo context.
func Auth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := validator.Validate(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrTokenInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
				}
				return err
			}

			c.Set(handler.CtxUserID, claims.UserID)
			c.Set(handler.CtxRole, string(domain.RoleFromUserType(claims.UserType)))
			c.Set(handler.CtxToken, parts[1])

			return next(c)
		}
	}
}
