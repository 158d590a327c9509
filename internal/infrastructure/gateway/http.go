// Package gateway implements the terminal's boundary to the CardDemo REST
// API: an HTTP client for the real service and an in-memory fixture.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/pkg/metrics"
)

const maxResponseBytes = 1 << 20

// envelope is the {success, data|error} wrapper of every API response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// HTTP talks to the REST API over HTTP.
type HTTP struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

var _ ports.Gateway = (*HTTP)(nil)

// NewHTTP returns a client for the API at baseURL. timeout applies to a nil
// client and to a client without a timeout of its own.
func NewHTTP(baseURL string, client *http.Client, timeout time.Duration, log zerolog.Logger) *HTTP {
	switch {
	case client == nil:
		client = &http.Client{Timeout: timeout}
	case client.Timeout == 0:
		c := *client
		c.Timeout = timeout
		client = &c
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

// call performs one request. route is the path template used as metric label.
// Any failure without an envelope maps to ports.ErrUnexpected; an envelope
// with success=false, or a non-2xx status, to *ports.RemoteError.
func (g *HTTP) call(ctx context.Context, method, route, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ports.ErrUnexpected, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ports.ErrUnexpected, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		metrics.GatewayRequestDuration.WithLabelValues(method, route, "transport").Observe(time.Since(start).Seconds())
		g.log.Warn().Err(err).Str("method", method).Str("route", route).Msg("api request failed")
		return fmt.Errorf("%w: %v", ports.ErrUnexpected, err)
	}
	defer resp.Body.Close()
	metrics.GatewayRequestDuration.WithLabelValues(method, route, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return fmt.Errorf("%w: decode response: %v", ports.ErrUnexpected, err)
		}
		return &ports.RemoteError{Status: resp.StatusCode, Message: ports.ErrUnexpected.Error()}
	}

	if !env.Success || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = ports.ErrUnexpected.Error()
		}
		return &ports.RemoteError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", ports.ErrUnexpected, err)
	}
	return nil
}

func (g *HTTP) Login(ctx context.Context, userID, password string) (*ports.LoginResult, error) {
	var out ports.LoginResult
	in := map[string]string{"userId": userID, "password": password}
	if err := g.call(ctx, http.MethodPost, "/api/auth/login", "/api/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error) {
	var out ports.RefreshResult
	in := map[string]string{"refreshToken": refreshToken}
	if err := g.call(ctx, http.MethodPost, "/api/auth/refresh", "/api/auth/refresh", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) Logout(ctx context.Context, accessToken string) error {
	return g.call(ctx, http.MethodPost, "/api/auth/logout", "/api/auth/logout", accessToken, nil, nil)
}

func (g *HTTP) Menu(ctx context.Context, token, menuType string) (*domain.Menu, error) {
	var out domain.Menu
	path := "/api/menu/" + url.PathEscape(menuType)
	if err := g.call(ctx, http.MethodGet, "/api/menu/:type", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) ValidateMenuOption(ctx context.Context, token, menuType string, optionID int) (bool, string, error) {
	var out struct {
		Validated   bool   `json:"validated"`
		RedirectURL string `json:"redirectUrl"`
	}
	in := map[string]any{"optionId": optionID, "menuType": menuType}
	if err := g.call(ctx, http.MethodPost, "/api/menu/validate", "/api/menu/validate", token, in, &out); err != nil {
		return false, "", err
	}
	return out.Validated, out.RedirectURL, nil
}

func (g *HTTP) GetAccount(ctx context.Context, token, accountID string) (*domain.Account, error) {
	var out domain.Account
	path := "/api/accounts/" + url.PathEscape(accountID)
	if err := g.call(ctx, http.MethodGet, "/api/accounts/:accountId", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) UpdateAccount(ctx context.Context, token, accountID string, update domain.AccountUpdate) (*domain.Account, error) {
	var out domain.Account
	path := "/api/accounts/" + url.PathEscape(accountID)
	if err := g.call(ctx, http.MethodPut, "/api/accounts/:accountId", path, token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) PayBill(ctx context.Context, token, accountID string) (*domain.Payment, error) {
	var out domain.Payment
	path := "/api/accounts/" + url.PathEscape(accountID) + "/payments"
	if err := g.call(ctx, http.MethodPost, "/api/accounts/:accountId/payments", path, token, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) GetCard(ctx context.Context, token, cardNumber string) (*domain.Card, error) {
	var out domain.Card
	path := "/api/cards/" + url.PathEscape(cardNumber)
	if err := g.call(ctx, http.MethodGet, "/api/cards/:cardNumber", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) ListCards(ctx context.Context, token, accountID string, page ports.PageRequest) (*domain.Page[*domain.Card], error) {
	var out domain.Page[*domain.Card]
	q := pageQuery(page)
	if accountID != "" {
		q.Set("accountId", accountID)
	}
	if err := g.call(ctx, http.MethodGet, "/api/cards", "/api/cards?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) AddCard(ctx context.Context, token string, card *domain.Card) (*domain.Card, error) {
	var out domain.Card
	if err := g.call(ctx, http.MethodPost, "/api/cards", "/api/cards", token, card, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) UpdateCard(ctx context.Context, token, cardNumber string, update domain.CardUpdate) (*domain.Card, error) {
	var out domain.Card
	path := "/api/cards/" + url.PathEscape(cardNumber)
	if err := g.call(ctx, http.MethodPut, "/api/cards/:cardNumber", path, token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) GetTransaction(ctx context.Context, token, transactionID string) (*domain.Transaction, error) {
	var out domain.Transaction
	path := "/api/transactions/" + url.PathEscape(transactionID)
	if err := g.call(ctx, http.MethodGet, "/api/transactions/:transactionId", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) ListTransactions(ctx context.Context, token string, page ports.PageRequest) (*domain.Page[*domain.Transaction], error) {
	var out domain.Page[*domain.Transaction]
	path := "/api/transactions?" + pageQuery(page).Encode()
	if err := g.call(ctx, http.MethodGet, "/api/transactions", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) AddTransaction(ctx context.Context, token string, in ports.AddTransactionInput) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := g.call(ctx, http.MethodPost, "/api/transactions", "/api/transactions", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) Report(ctx context.Context, token, reportType string, start, end time.Time) (*domain.TransactionReport, error) {
	var out domain.TransactionReport
	q := url.Values{}
	q.Set("type", reportType)
	if !start.IsZero() {
		q.Set("startDate", start.Format("2006-01-02"))
	}
	if !end.IsZero() {
		q.Set("endDate", end.Format("2006-01-02"))
	}
	path := "/api/reports/transactions?" + q.Encode()
	if err := g.call(ctx, http.MethodGet, "/api/reports/transactions", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) GetUser(ctx context.Context, token, userID string) (*domain.User, error) {
	var out domain.User
	path := "/api/users/" + url.PathEscape(userID)
	if err := g.call(ctx, http.MethodGet, "/api/users/:userId", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) ListUsers(ctx context.Context, token string, page ports.PageRequest) (*domain.Page[*domain.User], error) {
	var out domain.Page[*domain.User]
	path := "/api/users?" + pageQuery(page).Encode()
	if err := g.call(ctx, http.MethodGet, "/api/users", path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) AddUser(ctx context.Context, token string, in ports.UserInput) (*domain.User, error) {
	var out domain.User
	if err := g.call(ctx, http.MethodPost, "/api/users", "/api/users", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) UpdateUser(ctx context.Context, token string, in ports.UserInput) (*domain.User, error) {
	var out domain.User
	path := "/api/users/" + url.PathEscape(in.UserID)
	if err := g.call(ctx, http.MethodPut, "/api/users/:userId", path, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTP) DeleteUser(ctx context.Context, token, userID string) error {
	path := "/api/users/" + url.PathEscape(userID)
	return g.call(ctx, http.MethodDelete, "/api/users/:userId", path, token, nil, nil)
}

func pageQuery(page ports.PageRequest) url.Values {
	q := url.Values{}
	if page.Page > 0 {
		q.Set("page", strconv.Itoa(page.Page))
	}
	if page.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(page.PageSize))
	}
	return q
}
