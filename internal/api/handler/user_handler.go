package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/ports"
)

// UserHandler serves user administration. Every route is admin-only.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List pages through users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "1-based page"
// @Param        pageSize  query     int  false  "Rows per page"
// @Success      200       {object}  Envelope{data=domain.Page[domain.User]}
// @Failure      403       {object}  ErrorEnvelope
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := h.users.ListUsers(c.Request().Context(), pageParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(page))
}

// Get returns one user.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  Envelope{data=domain.User}
// @Failure      404     {object}  ErrorEnvelope
// @Router       /api/users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.GetUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(user))
}

// Create adds a user.
//
// @Summary      Add a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.UserInput  true  "User"
// @Success      201   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      409   {object}  ErrorEnvelope
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var in ports.UserInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.AddUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Success(user))
}

// Update changes a user; an empty password keeps the current one.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string           true  "User id"
// @Param        body    body      ports.UserInput  true  "User"
// @Success      200     {object}  Envelope{data=domain.User}
// @Failure      400     {object}  ErrorEnvelope
// @Failure      404     {object}  ErrorEnvelope
// @Router       /api/users/{userId} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var in ports.UserInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in.UserID = c.Param("userId")

	user, err := h.users.UpdateUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(user))
}

// Delete removes a user.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  Envelope
// @Failure      404     {object}  ErrorEnvelope
// @Router       /api/users/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), c.Param("userId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(nil))
}
