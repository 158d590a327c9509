package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

type CardHandler struct {
	cards ports.CardService
}

func NewCardHandler(cards ports.CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

type cardRequest struct {
	CardNumber   string `json:"cardNumber" validate:"required,len=16,numeric"`
	AccountID    string `json:"accountId" validate:"required,len=11,numeric"`
	EmbossedName string `json:"embossedName" validate:"required,max=50"`
	ExpiryMonth  int    `json:"expiryMonth" validate:"min=1,max=12"`
	ExpiryYear   int    `json:"expiryYear" validate:"min=1950,max=2099"`
	ActiveStatus string `json:"activeStatus" validate:"required,oneof=Y N"`
	CVV          string `json:"cvv" validate:"omitempty,len=3,numeric"`
}

type cardUpdateRequest struct {
	EmbossedName string `json:"embossedName" validate:"required,max=50"`
	ExpiryMonth  int    `json:"expiryMonth" validate:"min=1,max=12"`
	ExpiryYear   int    `json:"expiryYear" validate:"min=1950,max=2099"`
	ActiveStatus string `json:"activeStatus" validate:"required,oneof=Y N"`
}

// List pages through cards, optionally of one account.
//
// @Summary      List cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        accountId  query     string  false  "Filter by account"
// @Param        page       query     int     false  "1-based page"
// @Param        pageSize   query     int     false  "Rows per page"
// @Success      200        {object}  Envelope{data=domain.Page[domain.Card]}
// @Router       /api/cards [get]
func (h *CardHandler) List(c echo.Context) error {
	page, err := h.cards.ListCards(c.Request().Context(), c.QueryParam("accountId"), pageParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(page))
}

// Get returns one card.
//
// @Summary      Get a card
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardNumber  path      string  true  "16-digit card number"
// @Success      200         {object}  Envelope{data=domain.Card}
// @Failure      404         {object}  ErrorEnvelope
// @Router       /api/cards/{cardNumber} [get]
func (h *CardHandler) Get(c echo.Context) error {
	card, err := h.cards.GetCard(c.Request().Context(), c.Param("cardNumber"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(card))
}

// Create adds a card to an existing account.
//
// @Summary      Add a card
// @Tags         cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      cardRequest  true  "Card"
// @Success      201   {object}  Envelope{data=domain.Card}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      409   {object}  ErrorEnvelope
// @Router       /api/cards [post]
func (h *CardHandler) Create(c echo.Context) error {
	var req cardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	card, err := h.cards.AddCard(c.Request().Context(), &domain.Card{
		CardNumber:   req.CardNumber,
		AccountID:    req.AccountID,
		EmbossedName: req.EmbossedName,
		ExpiryMonth:  req.ExpiryMonth,
		ExpiryYear:   req.ExpiryYear,
		ActiveStatus: req.ActiveStatus,
		CVV:          req.CVV,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Success(card))
}

// Update changes the editable fields of a card.
//
// @Summary      Update a card
// @Tags         cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        cardNumber  path      string             true  "16-digit card number"
// @Param        body        body      cardUpdateRequest  true  "Editable fields"
// @Success      200         {object}  Envelope{data=domain.Card}
// @Failure      400         {object}  ErrorEnvelope
// @Failure      404         {object}  ErrorEnvelope
// @Router       /api/cards/{cardNumber} [put]
func (h *CardHandler) Update(c echo.Context) error {
	var req cardUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	card, err := h.cards.UpdateCard(c.Request().Context(), c.Param("cardNumber"), domain.CardUpdate{
		EmbossedName: req.EmbossedName,
		ExpiryMonth:  req.ExpiryMonth,
		ExpiryYear:   req.ExpiryYear,
		ActiveStatus: req.ActiveStatus,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(card))
}
