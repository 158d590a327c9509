package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

// SeedAccounts upserts a small set of development accounts with one card
// each. Account 00000000001 has a balance due; 00000000002 is fully paid.
func SeedAccounts(ctx context.Context, accounts ports.AccountRepository, cards ports.CardRepository) error {
	opened := time.Date(2014, 11, 20, 0, 0, 0, 0, time.UTC)
	seed := []struct {
		account domain.Account
		card    domain.Card
	}{
		{
			account: domain.Account{AccountID: "00000000001", ActiveStatus: "Y", CurrentBalance: 194.00, CreditLimit: 2020.00, CashCreditLimit: 1020.00, OpenDate: opened, ExpirationDate: opened.AddDate(11, 0, 0), ReissueDate: opened.AddDate(11, 0, 0), GroupID: "A000000000", CustomerName: "Immanuel Kessler"},
			card:    domain.Card{CardNumber: "0500024453765740", AccountID: "00000000001", EmbossedName: "IMMANUEL KESSLER", ExpiryMonth: 3, ExpiryYear: 2025, ActiveStatus: "Y", CVV: "747"},
		},
		{
			account: domain.Account{AccountID: "00000000002", ActiveStatus: "Y", CurrentBalance: 0, CreditLimit: 6190.00, CashCreditLimit: 2610.00, OpenDate: opened, ExpirationDate: opened.AddDate(10, 0, 0), ReissueDate: opened.AddDate(10, 0, 0), GroupID: "A000000000", CustomerName: "Enrico April"},
			card:    domain.Card{CardNumber: "0683586198171516", AccountID: "00000000002", EmbossedName: "ENRICO APRIL", ExpiryMonth: 7, ExpiryYear: 2025, ActiveStatus: "Y", CVV: "123"},
		},
	}

	for _, s := range seed {
		acct := s.account
		if err := accounts.Upsert(ctx, &acct); err != nil {
			return fmt.Errorf("seed account %s: %w", acct.AccountID, err)
		}
		card := s.card
		if _, err := cards.FindByNumber(ctx, card.CardNumber); err == nil {
			continue
		}
		if err := cards.Create(ctx, &card); err != nil {
			return fmt.Errorf("seed card for %s: %w", acct.AccountID, err)
		}
	}
	return nil
}
