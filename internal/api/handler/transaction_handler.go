package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/terminal/internal/core/ports"
)

const dateLayout = "2006-01-02"

type TransactionHandler struct {
	transactions ports.TransactionService
}

func NewTransactionHandler(transactions ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// List pages through all transactions.
//
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "1-based page"
// @Param        pageSize  query     int  false  "Rows per page"
// @Success      200       {object}  Envelope{data=domain.Page[domain.Transaction]}
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	page, err := h.transactions.ListTransactions(c.Request().Context(), pageParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(page))
}

// Get returns one transaction.
//
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        transactionId  path      string  true  "16-digit transaction id"
// @Success      200            {object}  Envelope{data=domain.Transaction}
// @Failure      404            {object}  ErrorEnvelope
// @Router       /api/transactions/{transactionId} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	tx, err := h.transactions.GetTransaction(c.Request().Context(), c.Param("transactionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(tx))
}

// Create records a manually keyed transaction.
//
// @Summary      Add a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.AddTransactionInput  true  "Transaction"
// @Success      201   {object}  Envelope{data=domain.Transaction}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      404   {object}  ErrorEnvelope
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	var in ports.AddTransactionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	tx, err := h.transactions.AddTransaction(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Success(tx))
}

// Report summarises transactions for a period.
//
// @Summary      Transaction report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        type       query     string  true   "monthly, yearly or custom"
// @Param        startDate  query     string  false  "YYYY-MM-DD, custom only"
// @Param        endDate    query     string  false  "YYYY-MM-DD, custom only"
// @Success      200        {object}  Envelope{data=domain.TransactionReport}
// @Failure      400        {object}  ErrorEnvelope
// @Router       /api/reports/transactions [get]
func (h *TransactionHandler) Report(c echo.Context) error {
	start, err := queryDate(c, "startDate")
	if err != nil {
		return err
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		return err
	}

	report, err := h.transactions.Report(c.Request().Context(), c.QueryParam("type"), start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Success(report))
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be a date (YYYY-MM-DD)")
	}
	return t, nil
}
