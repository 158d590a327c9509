package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/api/handler"
	"github.com/carddemo/terminal/internal/core/domain"
)

// RBAC admits only the given roles. Mount it after Auth: a request that
// carries no identity is unauthenticated, not forbidden.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, _ := c.Get(handler.CtxUserID).(string); userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			role, _ := c.Get(handler.CtxRole).(string)
			if !slices.Contains(allowedRoles, domain.Role(role)) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
