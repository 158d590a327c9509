package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/api/handler"
	"github.com/carddemo/terminal/internal/core/domain"
)

const genericError = "An unexpected error occurred"

// statusBySentinel maps domain errors to HTTP codes. The error text itself is
// the message shown on the terminal, so it is passed through unchanged.
var statusBySentinel = []struct {
	err    error
	status int
}{
	{domain.ErrMissingCredentials, http.StatusBadRequest},
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrUnknownMenuOption, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrTokenInvalid, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrAccountNotFound, http.StatusNotFound},
	{domain.ErrCardNotFound, http.StatusNotFound},
	{domain.ErrTransactionNotFound, http.StatusNotFound},
	{domain.ErrUnknownMenu, http.StatusNotFound},
	{domain.ErrNothingToPay, http.StatusConflict},
	{domain.ErrConcurrentUpdate, http.StatusConflict},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrCardExists, http.StatusConflict},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that renders every
// failure as {"success":false,"error":"<message>"}. Unknown errors are logged
// and answered with a generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.Failure(msg))
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			return m.status, err.Error()
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, genericError
}
