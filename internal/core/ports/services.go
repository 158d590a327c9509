package ports

import (
	"context"
	"time"

	"github.com/carddemo/terminal/internal/core/domain"
)

// TokenClaims is what a validated token carries.
type TokenClaims struct {
	UserID    string
	UserType  string
	SessionID string
	Use       string
	ExpiresAt time.Time
}

// AuthService signs users on and off and manages their tokens.
type AuthService interface {
	Login(ctx context.Context, userID, password string) (*domain.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	Validate(ctx context.Context, token string) (*TokenClaims, error)
	Logout(ctx context.Context, accessToken string) error
}

// MenuService serves menu descriptors and validates option choices.
type MenuService interface {
	Menu(menuType string, role domain.Role) (*domain.Menu, error)
	ValidateOption(menuType string, optionID int, role domain.Role) (validated bool, redirectURL string, err error)
}

// AccountService covers account view/update and bill payment.
type AccountService interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, update domain.AccountUpdate) (*domain.Account, error)
	PayBill(ctx context.Context, userID, accountID string) (*domain.Payment, error)
}

// CardService covers the credit card screens.
type CardService interface {
	GetCard(ctx context.Context, cardNumber string) (*domain.Card, error)
	ListCards(ctx context.Context, accountID string, page PageRequest) (domain.Page[*domain.Card], error)
	AddCard(ctx context.Context, card *domain.Card) (*domain.Card, error)
	UpdateCard(ctx context.Context, cardNumber string, update domain.CardUpdate) (*domain.Card, error)
}

// AddTransactionInput carries a manually keyed transaction.
type AddTransactionInput struct {
	CardNumber   string    `json:"cardNumber"`
	TypeCode     string    `json:"typeCode"`
	CategoryCode int       `json:"categoryCode"`
	Source       string    `json:"source"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	MerchantID   string    `json:"merchantId"`
	MerchantName string    `json:"merchantName"`
	MerchantCity string    `json:"merchantCity"`
	MerchantZip  string    `json:"merchantZip"`
	OriginatedAt time.Time `json:"originatedAt"`
}

// TransactionService covers the transaction screens and reports.
type TransactionService interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, page PageRequest) (domain.Page[*domain.Transaction], error)
	AddTransaction(ctx context.Context, in AddTransactionInput) (*domain.Transaction, error)
	Report(ctx context.Context, reportType string, start, end time.Time) (*domain.TransactionReport, error)
}

// UserInput carries the fields of the user add/update screens.
type UserInput struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password,omitempty"`
	UserType  string `json:"userType"`
}

// UserService covers user administration.
type UserService interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, page PageRequest) (domain.Page[*domain.User], error)
	AddUser(ctx context.Context, in UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, in UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// AuditRecorder accepts audit events for asynchronous persistence.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditService persists a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}
