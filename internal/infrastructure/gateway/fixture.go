package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

// Fixture is an in-memory backend with the development fixtures. It speaks
// the same error contract as the REST API so screens cannot tell them apart.
type Fixture struct {
	mu           sync.Mutex
	users        map[string]fixtureUser
	accounts     map[string]*domain.Account
	cards        map[string]*domain.Card
	transactions []*domain.Transaction
	tokens       map[string]fixtureToken
	accessTTL    time.Duration
	now          func() time.Time
	nextTxn      int64
}

type fixtureUser struct {
	user     domain.User
	password string
}

type fixtureToken struct {
	userID    string
	refresh   bool
	sessionID string
	expiresAt time.Time
}

var _ ports.Gateway = (*Fixture)(nil)

// NewFixture returns a Fixture seeded with ADMIN001 and USER001 (password
// PASSWORD), an account with a balance due and a fully paid one.
func NewFixture() *Fixture {
	f := &Fixture{
		users:     make(map[string]fixtureUser),
		accounts:  make(map[string]*domain.Account),
		cards:     make(map[string]*domain.Card),
		tokens:    make(map[string]fixtureToken),
		accessTTL: 15 * time.Minute,
		now:       time.Now,
		nextTxn:   1,
	}

	f.users["ADMIN001"] = fixtureUser{
		user:     domain.User{UserID: "ADMIN001", FirstName: "System", LastName: "Administrator", UserType: domain.UserTypeAdmin},
		password: "PASSWORD",
	}
	f.users["USER001"] = fixtureUser{
		user:     domain.User{UserID: "USER001", FirstName: "Back", LastName: "Office", UserType: domain.UserTypeRegular},
		password: "PASSWORD",
	}

	opened := time.Date(2014, 11, 20, 0, 0, 0, 0, time.UTC)
	f.accounts["00000000001"] = &domain.Account{AccountID: "00000000001", ActiveStatus: "Y", CurrentBalance: 194.00, CreditLimit: 2020.00, CashCreditLimit: 1020.00, OpenDate: opened, GroupID: "A000000000", CustomerName: "Immanuel Kessler"}
	f.accounts["00000000002"] = &domain.Account{AccountID: "00000000002", ActiveStatus: "Y", CurrentBalance: 0, CreditLimit: 6190.00, CashCreditLimit: 2610.00, OpenDate: opened, GroupID: "A000000000", CustomerName: "Enrico April"}
	f.cards["0500024453765740"] = &domain.Card{CardNumber: "0500024453765740", AccountID: "00000000001", EmbossedName: "IMMANUEL KESSLER", ExpiryMonth: 3, ExpiryYear: 2025, ActiveStatus: "Y"}
	f.cards["0683586198171516"] = &domain.Card{CardNumber: "0683586198171516", AccountID: "00000000002", EmbossedName: "ENRICO APRIL", ExpiryMonth: 7, ExpiryYear: 2025, ActiveStatus: "Y"}
	f.transactions = append(f.transactions, &domain.Transaction{
		TransactionID: "0000000000683580", TypeCode: "01", CategoryCode: 1, Source: "POS TERM",
		Description: "Purchase at Abshire-Lowe", Amount: 50.47, MerchantID: "800000000",
		MerchantName: "Abshire-Lowe", MerchantCity: "North Enoshaven", MerchantZip: "72112",
		CardNumber: "0500024453765740", AccountID: "00000000001", OriginatedAt: opened, ProcessedAt: opened,
	})
	return f
}

func remote(status int, msg string) error {
	return &ports.RemoteError{Status: status, Message: msg}
}

// auth resolves an access token. Callers hold f.mu.
func (f *Fixture) auth(token string, adminOnly bool) (fixtureUser, error) {
	t, ok := f.tokens[token]
	if !ok || t.refresh || !f.now().Before(t.expiresAt) {
		return fixtureUser{}, remote(http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
	}
	u, ok := f.users[t.userID]
	if !ok {
		return fixtureUser{}, remote(http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
	}
	if adminOnly && !u.user.IsAdmin() {
		return fixtureUser{}, remote(http.StatusForbidden, domain.ErrForbidden.Error())
	}
	return u, nil
}

func (f *Fixture) issue(userID, sessionID string, refresh bool, ttl time.Duration) string {
	token := uuid.NewString()
	f.tokens[token] = fixtureToken{userID: userID, refresh: refresh, sessionID: sessionID, expiresAt: f.now().Add(ttl)}
	return token
}

func (f *Fixture) Login(_ context.Context, userID, password string) (*ports.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID = domain.NormalizeUserID(userID)
	if userID == "" || password == "" {
		return nil, remote(http.StatusBadRequest, domain.ErrMissingCredentials.Error())
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, remote(http.StatusUnauthorized, domain.ErrUserNotFound.Error())
	}
	if u.password != password {
		return nil, remote(http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	}

	sid := uuid.NewString()
	return &ports.LoginResult{
		AccessToken:  f.issue(userID, sid, false, f.accessTTL),
		RefreshToken: f.issue(userID, sid, true, 24*time.Hour),
		TokenType:    "Bearer",
		UserID:       userID,
		FullName:     u.user.FullName(),
		UserType:     u.user.UserType,
		ExpiresIn:    int64(f.accessTTL / time.Second),
	}, nil
}

func (f *Fixture) Refresh(_ context.Context, refreshToken string) (*ports.RefreshResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if refreshToken == "" {
		return nil, remote(http.StatusBadRequest, "refreshToken is required")
	}
	t, ok := f.tokens[refreshToken]
	if !ok || !t.refresh || !f.now().Before(t.expiresAt) {
		return nil, remote(http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
	}
	return &ports.RefreshResult{
		AccessToken: f.issue(t.userID, t.sessionID, false, f.accessTTL),
		TokenType:   "Bearer",
		ExpiresIn:   int64(f.accessTTL / time.Second),
	}, nil
}

// Logout revokes every token of the session the access token belongs to.
func (f *Fixture) Logout(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tokens[accessToken]
	if !ok {
		return remote(http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
	}
	for k, other := range f.tokens {
		if other.sessionID == t.sessionID {
			delete(f.tokens, k)
		}
	}
	return nil
}

func (f *Fixture) Menu(_ context.Context, token, menuType string) (*domain.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, err := f.auth(token, menuType == domain.MenuAdmin)
	if err != nil {
		return nil, err
	}
	menu, ok := domain.MenuByType(menuType)
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrUnknownMenu.Error())
	}
	return menu.VisibleTo(domain.RoleFromUserType(u.user.UserType)), nil
}

func (f *Fixture) ValidateMenuOption(ctx context.Context, token, menuType string, optionID int) (bool, string, error) {
	menu, err := f.Menu(ctx, token, menuType)
	if err != nil {
		return false, "", err
	}
	opt, ok := menu.Option(optionID)
	if !ok {
		return false, "", remote(http.StatusBadRequest, domain.ErrUnknownMenuOption.Error())
	}
	if opt.Disabled {
		return false, "", nil
	}
	return true, opt.Path, nil
}

func (f *Fixture) GetAccount(_ context.Context, token, accountID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrAccountNotFound.Error())
	}
	clone := *a
	return &clone, nil
}

func (f *Fixture) UpdateAccount(_ context.Context, token, accountID string, update domain.AccountUpdate) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrAccountNotFound.Error())
	}
	if update.CashCreditLimit > update.CreditLimit {
		return nil, remote(http.StatusBadRequest, "cash credit limit exceeds credit limit")
	}
	a.ActiveStatus = update.ActiveStatus
	a.CreditLimit = update.CreditLimit
	a.CashCreditLimit = update.CashCreditLimit
	a.GroupID = update.GroupID
	clone := *a
	return &clone, nil
}

func (f *Fixture) PayBill(_ context.Context, token, accountID string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrAccountNotFound.Error())
	}
	if !a.HasBalanceDue() {
		return nil, remote(http.StatusConflict, domain.ErrNothingToPay.Error())
	}

	now := f.now().UTC()
	amount := domain.RoundCents(a.CurrentBalance)
	tx := &domain.Transaction{
		TransactionID: fmt.Sprintf("%016d", f.nextTxn),
		TypeCode:      domain.BillPaymentTypeCode,
		CategoryCode:  domain.BillPaymentCategoryCode,
		Source:        domain.BillPaymentSource,
		Description:   domain.BillPaymentDescription,
		Amount:        amount,
		MerchantID:    domain.BillPaymentMerchantID,
		MerchantName:  domain.BillPaymentMerchantName,
		AccountID:     accountID,
		OriginatedAt:  now,
		ProcessedAt:   now,
	}
	for _, c := range f.cards {
		if c.AccountID == accountID {
			tx.CardNumber = c.CardNumber
			break
		}
	}
	f.nextTxn++
	f.transactions = append(f.transactions, tx)
	a.CurrentBalance = 0

	return &domain.Payment{TransactionID: tx.TransactionID, AccountID: accountID, Amount: amount, ProcessedAt: now}, nil
}

func (f *Fixture) GetCard(_ context.Context, token, cardNumber string) (*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	c, ok := f.cards[cardNumber]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrCardNotFound.Error())
	}
	clone := *c
	return &clone, nil
}

func (f *Fixture) ListCards(_ context.Context, token, accountID string, page ports.PageRequest) (*domain.Page[*domain.Card], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	var all []*domain.Card
	for _, c := range f.cards {
		if accountID == "" || c.AccountID == accountID {
			clone := *c
			all = append(all, &clone)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CardNumber < all[j].CardNumber })
	return paginate(all, page), nil
}

func (f *Fixture) AddCard(_ context.Context, token string, card *domain.Card) (*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	if _, ok := f.accounts[card.AccountID]; !ok {
		return nil, remote(http.StatusNotFound, domain.ErrAccountNotFound.Error())
	}
	if _, ok := f.cards[card.CardNumber]; ok {
		return nil, remote(http.StatusConflict, domain.ErrCardExists.Error())
	}
	clone := *card
	f.cards[card.CardNumber] = &clone
	return card, nil
}

func (f *Fixture) UpdateCard(_ context.Context, token, cardNumber string, update domain.CardUpdate) (*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	c, ok := f.cards[cardNumber]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrCardNotFound.Error())
	}
	c.EmbossedName = update.EmbossedName
	c.ExpiryMonth = update.ExpiryMonth
	c.ExpiryYear = update.ExpiryYear
	c.ActiveStatus = update.ActiveStatus
	clone := *c
	return &clone, nil
}

func (f *Fixture) GetTransaction(_ context.Context, token, transactionID string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	for _, tx := range f.transactions {
		if tx.TransactionID == transactionID {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, remote(http.StatusNotFound, domain.ErrTransactionNotFound.Error())
}

func (f *Fixture) ListTransactions(_ context.Context, token string, page ports.PageRequest) (*domain.Page[*domain.Transaction], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	all := make([]*domain.Transaction, 0, len(f.transactions))
	for _, tx := range f.transactions {
		clone := *tx
		all = append(all, &clone)
	}
	return paginate(all, page), nil
}

func (f *Fixture) AddTransaction(_ context.Context, token string, in ports.AddTransactionInput) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	card, ok := f.cards[in.CardNumber]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrCardNotFound.Error())
	}
	now := f.now().UTC()
	tx := &domain.Transaction{
		TransactionID: fmt.Sprintf("%016d", f.nextTxn),
		TypeCode:      in.TypeCode,
		CategoryCode:  in.CategoryCode,
		Source:        in.Source,
		Description:   in.Description,
		Amount:        domain.RoundCents(in.Amount),
		MerchantID:    in.MerchantID,
		MerchantName:  in.MerchantName,
		MerchantCity:  in.MerchantCity,
		MerchantZip:   in.MerchantZip,
		CardNumber:    card.CardNumber,
		AccountID:     card.AccountID,
		OriginatedAt:  now,
		ProcessedAt:   now,
	}
	f.nextTxn++
	f.transactions = append(f.transactions, tx)
	clone := *tx
	return &clone, nil
}

func (f *Fixture) Report(_ context.Context, token, reportType string, start, end time.Time) (*domain.TransactionReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, false); err != nil {
		return nil, err
	}
	now := f.now().UTC()
	switch reportType {
	case domain.ReportMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case domain.ReportYearly:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	case domain.ReportCustom:
		if start.IsZero() || end.IsZero() || end.Before(start) {
			return nil, remote(http.StatusBadRequest, "invalid report date range")
		}
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	default:
		return nil, remote(http.StatusBadRequest, "report type must be monthly, yearly or custom")
	}

	rep := &domain.TransactionReport{ReportType: reportType, StartDate: start, EndDate: end}
	for _, tx := range f.transactions {
		if tx.ProcessedAt.Before(start) || tx.ProcessedAt.After(end) {
			continue
		}
		rep.Count++
		rep.TotalAmount += tx.Amount
	}
	rep.TotalAmount = domain.RoundCents(rep.TotalAmount)
	return rep, nil
}

func (f *Fixture) GetUser(_ context.Context, token, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, true); err != nil {
		return nil, err
	}
	u, ok := f.users[domain.NormalizeUserID(userID)]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrUserNotFound.Error())
	}
	clone := u.user
	return &clone, nil
}

func (f *Fixture) ListUsers(_ context.Context, token string, page ports.PageRequest) (*domain.Page[*domain.User], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, true); err != nil {
		return nil, err
	}
	all := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		clone := u.user
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	return paginate(all, page), nil
}

func (f *Fixture) AddUser(_ context.Context, token string, in ports.UserInput) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, true); err != nil {
		return nil, err
	}
	id := domain.NormalizeUserID(in.UserID)
	if _, ok := f.users[id]; ok {
		return nil, remote(http.StatusConflict, domain.ErrUserExists.Error())
	}
	u := domain.User{UserID: id, FirstName: in.FirstName, LastName: in.LastName, UserType: in.UserType, CreatedAt: f.now().UTC()}
	f.users[id] = fixtureUser{user: u, password: in.Password}
	return &u, nil
}

func (f *Fixture) UpdateUser(_ context.Context, token string, in ports.UserInput) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, true); err != nil {
		return nil, err
	}
	id := domain.NormalizeUserID(in.UserID)
	existing, ok := f.users[id]
	if !ok {
		return nil, remote(http.StatusNotFound, domain.ErrUserNotFound.Error())
	}
	existing.user.FirstName = in.FirstName
	existing.user.LastName = in.LastName
	existing.user.UserType = in.UserType
	existing.user.UpdatedAt = f.now().UTC()
	if strings.TrimSpace(in.Password) != "" {
		existing.password = in.Password
	}
	f.users[id] = existing
	u := existing.user
	return &u, nil
}

func (f *Fixture) DeleteUser(_ context.Context, token, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.auth(token, true); err != nil {
		return err
	}
	id := domain.NormalizeUserID(userID)
	if _, ok := f.users[id]; !ok {
		return remote(http.StatusNotFound, domain.ErrUserNotFound.Error())
	}
	delete(f.users, id)
	return nil
}

func paginate[T any](all []T, page ports.PageRequest) *domain.Page[T] {
	page = page.Normalize(10, 100)
	start := page.Skip()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PageSize
	if end > len(all) {
		end = len(all)
	}
	p := domain.NewPage(all[start:end], page.Page, page.PageSize, int64(len(all)))
	return &p
}
