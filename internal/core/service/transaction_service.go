package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

var typeCodePattern = regexp.MustCompile(`^\d{2}$`)

type TransactionService struct {
	transactions ports.TransactionRepository
	cards        ports.CardRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewTransactionService(transactions ports.TransactionRepository, cards ports.CardRepository, logger zerolog.Logger) *TransactionService {
	return &TransactionService{transactions: transactions, cards: cards, logger: logger, now: time.Now}
}

func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transactions.FindByID(ctx, transactionID)
}

func (s *TransactionService) ListTransactions(ctx context.Context, page ports.PageRequest) (domain.Page[*domain.Transaction], error) {
	page = page.Normalize(defaultPageSize, maxPageSize)
	items, total, err := s.transactions.List(ctx, ports.TransactionFilter{}, page)
	if err != nil {
		return domain.Page[*domain.Transaction]{}, fmt.Errorf("list transactions: %w", err)
	}
	return domain.NewPage(items, page.Page, page.PageSize, total), nil
}

// AddTransaction records a manually keyed transaction against an existing card.
func (s *TransactionService) AddTransaction(ctx context.Context, in ports.AddTransactionInput) (*domain.Transaction, error) {
	if !typeCodePattern.MatchString(in.TypeCode) {
		return nil, fmt.Errorf("%w: type code must be 2 digits", domain.ErrInvalidInput)
	}
	if in.CategoryCode <= 0 || in.CategoryCode > 9999 {
		return nil, fmt.Errorf("%w: category code must be 1-9999", domain.ErrInvalidInput)
	}
	if domain.RoundCents(in.Amount) == 0 {
		return nil, fmt.Errorf("%w: amount must not be zero", domain.ErrInvalidInput)
	}
	if in.Description == "" || in.MerchantName == "" {
		return nil, fmt.Errorf("%w: description and merchant name are required", domain.ErrInvalidInput)
	}

	card, err := s.cards.FindByNumber(ctx, in.CardNumber)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	originated := in.OriginatedAt
	if originated.IsZero() {
		originated = now
	}
	tx := &domain.Transaction{
		TransactionID: generateTransactionID(),
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
		OriginatedAt:  originated.UTC(),
		ProcessedAt:   now,
	}
	if err := s.transactions.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("add transaction: %w", err)
	}
	s.logger.Info().Str("transaction_id", tx.TransactionID).Str("account_id", tx.AccountID).Msg("transaction added")
	return tx, nil
}

// Report summarises transactions for the current month, the current year or
// a custom inclusive date range.
func (s *TransactionService) Report(ctx context.Context, reportType string, start, end time.Time) (*domain.TransactionReport, error) {
	from, to, err := reportRange(reportType, start, end, s.now().UTC())
	if err != nil {
		return nil, err
	}

	count, total, err := s.transactions.Summarize(ctx, ports.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	return &domain.TransactionReport{
		ReportType:  reportType,
		StartDate:   from,
		EndDate:     to,
		Count:       count,
		TotalAmount: domain.RoundCents(total),
	}, nil
}

func reportRange(reportType string, start, end, now time.Time) (time.Time, time.Time, error) {
	switch reportType {
	case domain.ReportMonthly:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
	case domain.ReportYearly:
		from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0).Add(-time.Nanosecond), nil
	case domain.ReportCustom:
		if start.IsZero() || end.IsZero() {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidInput)
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start date must not be after end date", domain.ErrInvalidInput)
		}
		from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Add(-time.Nanosecond)
		return from, to, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: report type must be monthly, yearly or custom", domain.ErrInvalidInput)
}
