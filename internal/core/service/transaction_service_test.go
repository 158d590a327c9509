package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

func TestTransactionService_AddTransaction(t *testing.T) {
	cards := newStubCardRepo(&domain.Card{CardNumber: "0500024453765740", AccountID: "00000000001"})
	txs := &stubTransactionRepo{}
	svc := NewTransactionService(txs, cards, zerolog.Nop())
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, ports.AddTransactionInput{
		CardNumber:   "0500024453765740",
		TypeCode:     "01",
		CategoryCode: 1,
		Description:  "Purchase",
		Amount:       12.5,
		MerchantName: "Corner Shop",
	})
	require.NoError(t, err)
	assert.Equal(t, "00000000001", tx.AccountID)
	assert.Equal(t, 12.5, tx.Amount)
	assert.Len(t, tx.TransactionID, 16)

	got, err := svc.GetTransaction(ctx, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, tx.TransactionID, got.TransactionID)

	_, err = svc.AddTransaction(ctx, ports.AddTransactionInput{CardNumber: "1111111111111111", TypeCode: "01", CategoryCode: 1, Description: "x", Amount: 1, MerchantName: "m"})
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	_, err = svc.AddTransaction(ctx, ports.AddTransactionInput{CardNumber: "0500024453765740", TypeCode: "1", CategoryCode: 1, Description: "x", Amount: 1, MerchantName: "m"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransactionService_Report(t *testing.T) {
	now := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	txs := &stubTransactionRepo{txs: []*domain.Transaction{
		{TransactionID: "1", Amount: 10, ProcessedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{TransactionID: "2", Amount: 5.5, ProcessedAt: time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC)},
		{TransactionID: "3", Amount: 100, ProcessedAt: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		{TransactionID: "4", Amount: 7, ProcessedAt: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
	}}
	svc := NewTransactionService(txs, newStubCardRepo(), zerolog.Nop())
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	monthly, err := svc.Report(ctx, domain.ReportMonthly, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, monthly.Count)
	assert.Equal(t, 15.5, monthly.TotalAmount)

	yearly, err := svc.Report(ctx, domain.ReportYearly, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 3, yearly.Count)

	custom, err := svc.Report(ctx, domain.ReportCustom, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, custom.Count)
	assert.Equal(t, 107.0, custom.TotalAmount)

	_, err = svc.Report(ctx, domain.ReportCustom, now, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Report(ctx, "weekly", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCardService_AddCardAndList(t *testing.T) {
	accounts := newStubAccountRepo(&domain.Account{AccountID: "00000000001"})
	cards := newStubCardRepo()
	svc := NewCardService(cards, accounts, zerolog.Nop())
	ctx := context.Background()

	card := &domain.Card{CardNumber: "4111111111111111", AccountID: "00000000001", EmbossedName: " jane doe ", ExpiryMonth: 12, ExpiryYear: 2030, ActiveStatus: "Y"}
	added, err := svc.AddCard(ctx, card)
	require.NoError(t, err)
	assert.Equal(t, "JANE DOE", added.EmbossedName)

	dup := *card
	_, err = svc.AddCard(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrCardExists)

	_, err = svc.AddCard(ctx, &domain.Card{CardNumber: "4111111111111112", AccountID: "00000000009", EmbossedName: "X", ExpiryMonth: 1, ExpiryYear: 2030, ActiveStatus: "Y"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = svc.AddCard(ctx, &domain.Card{CardNumber: "4111", AccountID: "00000000001", EmbossedName: "X", ExpiryMonth: 1, ExpiryYear: 2030, ActiveStatus: "Y"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	page, err := svc.ListCards(ctx, "00000000001", ports.PageRequest{Page: 1, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)
	assert.Len(t, page.Items, 1)
}
