package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/pkg/metrics"
)

type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type accountUpdateRequest struct {
	ActiveStatus    string  `json:"activeStatus" validate:"required,oneof=Y N"`
	CreditLimit     float64 `json:"creditLimit" validate:"min=0"`
	CashCreditLimit float64 `json:"cashCreditLimit" validate:"min=0"`
	GroupID         string  `json:"groupId" validate:"max=10"`
}

// Get returns one account.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        accountId  path      string  true  "11-digit account id"
// @Success      200        {object}  Envelope{data=domain.Account}
// @Failure      404        {object}  ErrorEnvelope
// @Router       /api/accounts/{accountId} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	acct, err := h.accounts.GetAccount(c.Request().Context(), c.Param("accountId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(acct))
}

// Update changes the editable fields of an account.
//
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId  path      string                true  "11-digit account id"
// @Param        body       body      accountUpdateRequest  true  "Editable fields"
// @Success      200        {object}  Envelope{data=domain.Account}
// @Failure      400        {object}  ErrorEnvelope
// @Failure      404        {object}  ErrorEnvelope
// @Router       /api/accounts/{accountId} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	var req accountUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	acct, err := h.accounts.UpdateAccount(c.Request().Context(), c.Param("accountId"), domain.AccountUpdate{
		ActiveStatus:    req.ActiveStatus,
		CreditLimit:     req.CreditLimit,
		CashCreditLimit: req.CashCreditLimit,
		GroupID:         req.GroupID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(acct))
}

// Pay pays the full balance of an account.
//
// @Summary      Pay the bill
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        accountId  path      string  true  "11-digit account id"
// @Success      201        {object}  Envelope{data=domain.Payment}
// @Failure      404        {object}  ErrorEnvelope
// @Failure      409        {object}  ErrorEnvelope
// @Router       /api/accounts/{accountId}/payments [post]
func (h *AccountHandler) Pay(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payment, err := h.accounts.PayBill(c.Request().Context(), userID, c.Param("accountId"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNothingToPay):
			metrics.BillPaymentsTotal.WithLabelValues("nothing_to_pay").Inc()
		case errors.Is(err, domain.ErrConcurrentUpdate):
			metrics.BillPaymentsTotal.WithLabelValues("conflict").Inc()
		default:
			metrics.BillPaymentsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.BillPaymentsTotal.WithLabelValues("paid").Inc()
	return c.JSON(http.StatusCreated, Success(payment))
}
