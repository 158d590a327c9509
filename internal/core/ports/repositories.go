package ports

import (
	"context"
	"time"

	"github.com/carddemo/terminal/internal/core/domain"
)

// PageRequest is a 1-based page selection. PageSize is capped by the services.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize applies defaults and the maximum page size.
func (p PageRequest) Normalize(defaultSize, maxSize int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Skip is the number of rows before the requested page.
func (p PageRequest) Skip() int {
	return (p.Page - 1) * p.PageSize
}

// UserRepository persists sign-on users.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, page PageRequest) ([]*domain.User, int64, error)
}

// AccountRepository persists accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, accountID string) (*domain.Account, error)
	Upsert(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, accountID string, update domain.AccountUpdate) (*domain.Account, error)
	// ApplyPayment zeroes the balance only if it still equals expectedBalance.
	// It returns domain.ErrConcurrentUpdate when the balance changed meanwhile.
	ApplyPayment(ctx context.Context, accountID string, expectedBalance float64) error
}

// CardRepository persists cards.
type CardRepository interface {
	FindByNumber(ctx context.Context, cardNumber string) (*domain.Card, error)
	Create(ctx context.Context, card *domain.Card) error
	Update(ctx context.Context, cardNumber string, update domain.CardUpdate) (*domain.Card, error)
	// List returns cards of accountID, or all cards when accountID is empty.
	List(ctx context.Context, accountID string, page PageRequest) ([]*domain.Card, int64, error)
}

// TransactionFilter narrows transaction listings and reports.
type TransactionFilter struct {
	AccountID string    // empty = all accounts
	From      time.Time // optional: processed_at >= From
	To        time.Time // optional: processed_at <= To
}

// TransactionRepository persists transactions.
type TransactionRepository interface {
	FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	Insert(ctx context.Context, tx *domain.Transaction) error
	List(ctx context.Context, filter TransactionFilter, page PageRequest) ([]*domain.Transaction, int64, error)
	// Summarize counts and totals transactions matching filter.
	Summarize(ctx context.Context, filter TransactionFilter) (int, float64, error)
}

// AuditRepository stores the audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// RefreshSessionStore tracks live refresh sessions so logout can revoke them.
type RefreshSessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Lookup returns the user id owning the session or domain.ErrTokenInvalid.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// SessionRepository persists terminal Sessions keyed by browser session id.
type SessionRepository interface {
	Get(ctx context.Context, browserID string) (*domain.Session, error)
	Save(ctx context.Context, browserID string, s *domain.Session) error
	Delete(ctx context.Context, browserID string) error
}
