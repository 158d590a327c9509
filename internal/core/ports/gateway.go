package ports

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carddemo/terminal/internal/core/domain"
)

// ErrUnexpected is returned by gateways when the backend could not be reached
// or answered with something that is not an envelope. Its text is the generic
// message shown on screen.
var ErrUnexpected = errors.New("An unexpected error occurred")

// ErrUnauthorized matches any RemoteError with HTTP status 401.
var ErrUnauthorized = errors.New("unauthorized")

// RemoteError is a request failure reported by the backend, either as a
// non-2xx status or as a {success:false} envelope. Message is shown verbatim.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is lets callers test errors.Is(err, ErrUnauthorized).
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// LoginResult is the data of a successful POST /api/auth/login.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	UserID       string `json:"userId"`
	FullName     string `json:"fullName"`
	UserType     string `json:"userType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Session builds the terminal Session a login produces.
func (r *LoginResult) Session(now time.Time) *domain.Session {
	return &domain.Session{
		UserID:       r.UserID,
		FullName:     r.FullName,
		Role:         domain.RoleFromUserType(r.UserType),
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(r.ExpiresIn) * time.Second),
	}
}

// RefreshResult is the data of a successful POST /api/auth/refresh.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// AuthGateway is the sign-on part of the backend boundary.
type AuthGateway interface {
	Login(ctx context.Context, userID, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, accessToken string) error
}

// MenuGateway serves menu descriptors.
type MenuGateway interface {
	Menu(ctx context.Context, token, menuType string) (*domain.Menu, error)
	ValidateMenuOption(ctx context.Context, token, menuType string, optionID int) (bool, string, error)
}

// AccountGateway covers account screens and bill payment.
type AccountGateway interface {
	GetAccount(ctx context.Context, token, accountID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, token, accountID string, update domain.AccountUpdate) (*domain.Account, error)
	PayBill(ctx context.Context, token, accountID string) (*domain.Payment, error)
}

// CardGateway covers the credit card screens.
type CardGateway interface {
	GetCard(ctx context.Context, token, cardNumber string) (*domain.Card, error)
	ListCards(ctx context.Context, token, accountID string, page PageRequest) (*domain.Page[*domain.Card], error)
	AddCard(ctx context.Context, token string, card *domain.Card) (*domain.Card, error)
	UpdateCard(ctx context.Context, token, cardNumber string, update domain.CardUpdate) (*domain.Card, error)
}

// TransactionGateway covers the transaction screens and reports.
type TransactionGateway interface {
	GetTransaction(ctx context.Context, token, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, token string, page PageRequest) (*domain.Page[*domain.Transaction], error)
	AddTransaction(ctx context.Context, token string, in AddTransactionInput) (*domain.Transaction, error)
	Report(ctx context.Context, token, reportType string, start, end time.Time) (*domain.TransactionReport, error)
}

// UserGateway covers user administration.
type UserGateway interface {
	GetUser(ctx context.Context, token, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, token string, page PageRequest) (*domain.Page[*domain.User], error)
	AddUser(ctx context.Context, token string, in UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, token string, in UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, token, userID string) error
}

// Gateway is the whole request/response boundary to the CardDemo REST API.
type Gateway interface {
	AuthGateway
	MenuGateway
	AccountGateway
	CardGateway
	TransactionGateway
	UserGateway
}
