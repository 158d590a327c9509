package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

type AccountService struct {
	accounts     ports.AccountRepository
	cards        ports.CardRepository
	transactions ports.TransactionRepository
	audit        ports.AuditRecorder
	logger       zerolog.Logger
	now          func() time.Time
}

func NewAccountService(
	accounts ports.AccountRepository,
	cards ports.CardRepository,
	transactions ports.TransactionRepository,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts:     accounts,
		cards:        cards,
		transactions: transactions,
		audit:        audit,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, update domain.AccountUpdate) (*domain.Account, error) {
	if update.ActiveStatus != "Y" && update.ActiveStatus != "N" {
		return nil, fmt.Errorf("%w: active status must be Y or N", domain.ErrInvalidInput)
	}
	if update.CreditLimit < 0 || update.CashCreditLimit < 0 {
		return nil, fmt.Errorf("%w: limits must not be negative", domain.ErrInvalidInput)
	}
	if update.CashCreditLimit > update.CreditLimit {
		return nil, fmt.Errorf("%w: cash credit limit exceeds credit limit", domain.ErrInvalidInput)
	}

	acct, err := s.accounts.Update(ctx, accountID, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", accountID).Msg("account updated")
	return acct, nil
}

// PayBill pays the full current balance of an account. A zero or negative
// balance yields domain.ErrNothingToPay and no transaction.
func (s *AccountService) PayBill(ctx context.Context, userID, accountID string) (*domain.Payment, error) {
	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.HasBalanceDue() {
		return nil, domain.ErrNothingToPay
	}

	cardNumber := ""
	cards, _, err := s.cards.List(ctx, accountID, ports.PageRequest{Page: 1, PageSize: 1})
	if err != nil {
		return nil, fmt.Errorf("pay bill: find card: %w", err)
	}
	if len(cards) > 0 {
		cardNumber = cards[0].CardNumber
	}

	amount := domain.RoundCents(acct.CurrentBalance)
	if err := s.accounts.ApplyPayment(ctx, accountID, acct.CurrentBalance); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tx := &domain.Transaction{
		TransactionID: generateTransactionID(),
		TypeCode:      domain.BillPaymentTypeCode,
		CategoryCode:  domain.BillPaymentCategoryCode,
		Source:        domain.BillPaymentSource,
		Description:   domain.BillPaymentDescription,
		Amount:        amount,
		MerchantID:    domain.BillPaymentMerchantID,
		MerchantName:  domain.BillPaymentMerchantName,
		MerchantCity:  "N/A",
		MerchantZip:   "N/A",
		CardNumber:    cardNumber,
		AccountID:     accountID,
		OriginatedAt:  now,
		ProcessedAt:   now,
	}
	if err := s.transactions.Insert(ctx, tx); err != nil {
		// The balance is already zeroed; the id lets operations reconcile by hand.
		s.logger.Error().Err(err).
			Str("account_id", accountID).
			Str("transaction_id", tx.TransactionID).
			Float64("amount", amount).
			Msg("bill payment applied but transaction not recorded")
		return nil, fmt.Errorf("pay bill: record transaction: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(domain.AuditEvent{
			UserID:     userID,
			Action:     domain.AuditBillPayment,
			Reference:  tx.TransactionID,
			OccurredAt: now,
		})
	}

	s.logger.Info().Str("account_id", accountID).Str("transaction_id", tx.TransactionID).Msg("bill paid")

	return &domain.Payment{
		TransactionID: tx.TransactionID,
		AccountID:     accountID,
		Amount:        amount,
		NewBalance:    0,
		ProcessedAt:   now,
	}, nil
}
