package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/pkg/metrics"
)

const tokenTypeBearer = "Bearer"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type validateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type validateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId,omitempty"`
}

// Login signs a user on.
//
// @Summary      Sign on
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  Envelope{data=ports.LoginResult}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.authService.Login(c.Request().Context(), req.UserID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingCredentials):
			metrics.LoginsTotal.WithLabelValues("bad_request").Inc()
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LoginsTotal.WithLabelValues("user_not_found").Inc()
			// an unknown user is a failed sign-on, not a missing resource
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, Success(ports.LoginResult{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    tokenTypeBearer,
		UserID:       res.User.UserID,
		FullName:     res.User.FullName(),
		UserType:     res.User.UserType,
		ExpiresIn:    res.ExpiresIn,
	}))
}

// Refresh issues a new access token.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  Envelope{data=ports.RefreshResult}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(ports.RefreshResult{
		AccessToken: res.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   res.ExpiresIn,
	}))
}

// Validate reports whether an access token is still usable. An invalid token
// is a successful answer with valid=false.
//
// @Summary      Validate a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      validateTokenRequest  true  "Token"
// @Success      200   {object}  Envelope{data=validateTokenResponse}
// @Failure      400   {object}  ErrorEnvelope
// @Router       /api/auth/validate [post]
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	claims, err := h.authService.Validate(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return c.JSON(http.StatusOK, Success(validateTokenResponse{Valid: false}))
		}
		return err
	}
	return c.JSON(http.StatusOK, Success(validateTokenResponse{Valid: true, UserID: claims.UserID}))
}

// Logout revokes the caller's session.
//
// @Summary      Sign off
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  ErrorEnvelope
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(CtxToken).(string)
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(nil))
}
