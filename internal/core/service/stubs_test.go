package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, userID string) (*domain.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := r.users[user.UserID]; exists {
		return domain.ErrUserExists
	}
	r.users[user.UserID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, exists := r.users[user.UserID]; !exists {
		return domain.ErrUserNotFound
	}
	r.users[user.UserID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, userID string) error {
	if _, exists := r.users[userID]; !exists {
		return domain.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, page ports.PageRequest) ([]*domain.User, int64, error) {
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*domain.User
	for i := page.Skip(); i < len(ids) && len(out) < page.PageSize; i++ {
		out = append(out, cloneUser(r.users[ids[i]]))
	}
	return out, int64(len(ids)), nil
}

type stubRefreshStore struct {
	sessions map[string]string
}

func newStubRefreshStore() *stubRefreshStore {
	return &stubRefreshStore{sessions: make(map[string]string)}
}

func (s *stubRefreshStore) Save(_ context.Context, sessionID, userID string, _ time.Duration) error {
	s.sessions[sessionID] = userID
	return nil
}

func (s *stubRefreshStore) Lookup(_ context.Context, sessionID string) (string, error) {
	owner, ok := s.sessions[sessionID]
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	return owner, nil
}

func (s *stubRefreshStore) Revoke(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAudit) Record(event domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *stubAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func newStubAccountRepo(accounts ...*domain.Account) *stubAccountRepo {
	r := &stubAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, a := range accounts {
		clone := *a
		r.accounts[a.AccountID] = &clone
	}
	return r
}

func (r *stubAccountRepo) FindByID(_ context.Context, accountID string) (*domain.Account, error) {
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) Upsert(_ context.Context, account *domain.Account) error {
	clone := *account
	r.accounts[account.AccountID] = &clone
	return nil
}

func (r *stubAccountRepo) Update(_ context.Context, accountID string, update domain.AccountUpdate) (*domain.Account, error) {
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.ActiveStatus = update.ActiveStatus
	a.CreditLimit = update.CreditLimit
	a.CashCreditLimit = update.CashCreditLimit
	a.GroupID = update.GroupID
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) ApplyPayment(_ context.Context, accountID string, expectedBalance float64) error {
	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.CurrentBalance != expectedBalance {
		return domain.ErrConcurrentUpdate
	}
	a.CurrentBalance = 0
	return nil
}

type stubCardRepo struct {
	cards map[string]*domain.Card
}

func newStubCardRepo(cards ...*domain.Card) *stubCardRepo {
	r := &stubCardRepo{cards: make(map[string]*domain.Card)}
	for _, c := range cards {
		clone := *c
		r.cards[c.CardNumber] = &clone
	}
	return r
}

func (r *stubCardRepo) FindByNumber(_ context.Context, cardNumber string) (*domain.Card, error) {
	c, ok := r.cards[cardNumber]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCardRepo) Create(_ context.Context, card *domain.Card) error {
	clone := *card
	r.cards[card.CardNumber] = &clone
	return nil
}

func (r *stubCardRepo) Update(_ context.Context, cardNumber string, update domain.CardUpdate) (*domain.Card, error) {
	c, ok := r.cards[cardNumber]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	c.EmbossedName = update.EmbossedName
	c.ExpiryMonth = update.ExpiryMonth
	c.ExpiryYear = update.ExpiryYear
	c.ActiveStatus = update.ActiveStatus
	clone := *c
	return &clone, nil
}

func (r *stubCardRepo) List(_ context.Context, accountID string, page ports.PageRequest) ([]*domain.Card, int64, error) {
	numbers := make([]string, 0, len(r.cards))
	for n, c := range r.cards {
		if accountID == "" || c.AccountID == accountID {
			numbers = append(numbers, n)
		}
	}
	sort.Strings(numbers)
	var out []*domain.Card
	for i := page.Skip(); i < len(numbers) && len(out) < page.PageSize; i++ {
		clone := *r.cards[numbers[i]]
		out = append(out, &clone)
	}
	return out, int64(len(numbers)), nil
}

type stubTransactionRepo struct {
	txs       []*domain.Transaction
	insertErr error
}

func (r *stubTransactionRepo) FindByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	for _, tx := range r.txs {
		if tx.TransactionID == transactionID {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *stubTransactionRepo) Insert(_ context.Context, tx *domain.Transaction) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *tx
	r.txs = append(r.txs, &clone)
	return nil
}

func (r *stubTransactionRepo) matching(filter ports.TransactionFilter) []*domain.Transaction {
	var out []*domain.Transaction
	for _, tx := range r.txs {
		if filter.AccountID != "" && tx.AccountID != filter.AccountID {
			continue
		}
		if !filter.From.IsZero() && tx.ProcessedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tx.ProcessedAt.After(filter.To) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (r *stubTransactionRepo) List(_ context.Context, filter ports.TransactionFilter, page ports.PageRequest) ([]*domain.Transaction, int64, error) {
	all := r.matching(filter)
	var out []*domain.Transaction
	for i := page.Skip(); i < len(all) && len(out) < page.PageSize; i++ {
		out = append(out, all[i])
	}
	return out, int64(len(all)), nil
}

func (r *stubTransactionRepo) Summarize(_ context.Context, filter ports.TransactionFilter) (int, float64, error) {
	all := r.matching(filter)
	total := 0.0
	for _, tx := range all {
		total += tx.Amount
	}
	return len(all), total, nil
}
