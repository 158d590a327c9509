package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carddemo/terminal/internal/core/domain"
)

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(collectionAccounts)}
}

func (r *AccountRepository) FindByID(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Account
	if err := r.coll.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepository) Upsert(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"account_id": account.AccountID},
		account,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, accountID string, update domain.AccountUpdate) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"active_status":     update.ActiveStatus,
		"credit_limit":      update.CreditLimit,
		"cash_credit_limit": update.CashCreditLimit,
		"group_id":          update.GroupID,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a domain.Account
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"account_id": accountID}, bson.M{"$set": set}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return &a, nil
}

// ApplyPayment zeroes the balance with a compare-and-set on the balance that
// was read, crediting the current cycle with the paid amount.
func (r *AccountRepository) ApplyPayment(ctx context.Context, accountID string, expectedBalance float64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"account_id": accountID, "current_balance": expectedBalance}
	update := bson.M{
		"$set": bson.M{"current_balance": 0.0},
		"$inc": bson.M{"curr_cyc_credit": domain.RoundCents(expectedBalance)},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("apply payment: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	err = r.coll.FindOne(ctx, bson.M{"account_id": accountID}).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrAccountNotFound
	case err != nil:
		return fmt.Errorf("apply payment: %w", err)
	default:
		return domain.ErrConcurrentUpdate
	}
}
