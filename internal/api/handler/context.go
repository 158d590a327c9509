package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

// Context keys set by the Auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxToken  = "token"
)

// ctxClaims extracts the identity injected by the Auth middleware. A missing
// user id means the route was mounted without Auth.
func ctxClaims(c echo.Context) (userID string, role domain.Role, err error) {
	userID, _ = c.Get(CtxUserID).(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	r, _ := c.Get(CtxRole).(string)
	return userID, domain.Role(r), nil
}

// pageParams reads ?page=&pageSize=; bad values fall back to the defaults.
func pageParams(c echo.Context) ports.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	return ports.PageRequest{Page: page, PageSize: size}
}
