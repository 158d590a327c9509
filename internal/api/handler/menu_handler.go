package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/ports"
)

type MenuHandler struct {
	menus ports.MenuService
}

func NewMenuHandler(menus ports.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

type validateOptionRequest struct {
	OptionID int    `json:"optionId" validate:"required,min=1,max=99"`
	MenuType string `json:"menuType" validate:"required,oneof=main admin"`
}

type validateOptionResponse struct {
	Validated   bool   `json:"validated"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Get returns a menu descriptor. The admin menu requires the admin role.
//
// @Summary      Get a menu
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string  true  "main or admin"
// @Success      200   {object}  Envelope{data=domain.Menu}
// @Failure      403   {object}  ErrorEnvelope
// @Failure      404   {object}  ErrorEnvelope
// @Router       /api/menu/{type} [get]
func (h *MenuHandler) Get(c echo.Context) error {
	_, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	menu, err := h.menus.Menu(c.Param("type"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(menu))
}

// Validate checks a menu choice and returns where it leads.
//
// @Summary      Validate a menu option
// @Tags         menu
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      validateOptionRequest  true  "Choice"
// @Success      200   {object}  Envelope{data=validateOptionResponse}
// @Failure      400   {object}  ErrorEnvelope
// @Router       /api/menu/validate [post]
func (h *MenuHandler) Validate(c echo.Context) error {
	_, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req validateOptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ok, redirect, err := h.menus.ValidateOption(req.MenuType, req.OptionID, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(validateOptionResponse{Validated: ok, RedirectURL: redirect}))
}
