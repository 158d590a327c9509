package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	accountIDPattern  = regexp.MustCompile(`^\d{11}$`)
)

type CardService struct {
	cards    ports.CardRepository
	accounts ports.AccountRepository
	logger   zerolog.Logger
}

func NewCardService(cards ports.CardRepository, accounts ports.AccountRepository, logger zerolog.Logger) *CardService {
	return &CardService{cards: cards, accounts: accounts, logger: logger}
}

func (s *CardService) GetCard(ctx context.Context, cardNumber string) (*domain.Card, error) {
	return s.cards.FindByNumber(ctx, cardNumber)
}

// ListCards pages through the cards of one account, or all cards when
// accountID is empty.
func (s *CardService) ListCards(ctx context.Context, accountID string, page ports.PageRequest) (domain.Page[*domain.Card], error) {
	page = page.Normalize(defaultPageSize, maxPageSize)
	items, total, err := s.cards.List(ctx, accountID, page)
	if err != nil {
		return domain.Page[*domain.Card]{}, fmt.Errorf("list cards: %w", err)
	}
	return domain.NewPage(items, page.Page, page.PageSize, total), nil
}

func (s *CardService) AddCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	if !cardNumberPattern.MatchString(card.CardNumber) {
		return nil, fmt.Errorf("%w: card number must be 16 digits", domain.ErrInvalidInput)
	}
	if !accountIDPattern.MatchString(card.AccountID) {
		return nil, fmt.Errorf("%w: account id must be 11 digits", domain.ErrInvalidInput)
	}
	if err := validateCardFields(card.EmbossedName, card.ExpiryMonth, card.ExpiryYear, card.ActiveStatus); err != nil {
		return nil, err
	}
	if _, err := s.accounts.FindByID(ctx, card.AccountID); err != nil {
		return nil, err
	}

	if _, err := s.cards.FindByNumber(ctx, card.CardNumber); err == nil {
		return nil, domain.ErrCardExists
	} else if !errors.Is(err, domain.ErrCardNotFound) {
		return nil, fmt.Errorf("add card: %w", err)
	}

	card.EmbossedName = strings.ToUpper(strings.TrimSpace(card.EmbossedName))
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", card.AccountID).Msg("card added")
	return card, nil
}

func (s *CardService) UpdateCard(ctx context.Context, cardNumber string, update domain.CardUpdate) (*domain.Card, error) {
	if err := validateCardFields(update.EmbossedName, update.ExpiryMonth, update.ExpiryYear, update.ActiveStatus); err != nil {
		return nil, err
	}
	update.EmbossedName = strings.ToUpper(strings.TrimSpace(update.EmbossedName))
	return s.cards.Update(ctx, cardNumber, update)
}

func validateCardFields(name string, month, year int, status string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: embossed name is required", domain.ErrInvalidInput)
	case month < 1 || month > 12:
		return fmt.Errorf("%w: expiry month must be 1-12", domain.ErrInvalidInput)
	case year < 1950 || year > 2099:
		return fmt.Errorf("%w: expiry year must be 1950-2099", domain.ErrInvalidInput)
	case status != "Y" && status != "N":
		return fmt.Errorf("%w: active status must be Y or N", domain.ErrInvalidInput)
	}
	return nil
}
