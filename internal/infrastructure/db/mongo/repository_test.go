package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "carddemo.users", mtest.FirstBatch, bson.D{
			{Key: "user_id", Value: "ADMIN001"},
			{Key: "first_name", Value: "System"},
			{Key: "last_name", Value: "Administrator"},
			{Key: "password_hash", Value: "hash"},
			{Key: "user_type", Value: "A"},
			{Key: "created_at", Value: int64(1700000000)},
		}))

		u, err := NewUserRepository(mt.DB).FindByID(context.Background(), "ADMIN001")
		require.NoError(mt, err)
		assert.Equal(mt, "System Administrator", u.FullName())
		assert.True(mt, u.IsAdmin())
		assert.Equal(mt, int64(1700000000), u.CreatedAt.Unix())
		assert.True(mt, u.UpdatedAt.IsZero())
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "carddemo.users", mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).FindByID(context.Background(), "NOBODY")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("duplicate create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := NewUserRepository(mt.DB).Create(context.Background(), &domain.User{UserID: "USER001"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewUserRepository(mt.DB).Delete(context.Background(), "NOBODY")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestAccountRepository_ApplyPayment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("balance unchanged", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := NewAccountRepository(mt.DB).ApplyPayment(context.Background(), "00000000001", 194.00)
		assert.NoError(mt, err)
	})

	mt.Run("balance changed meanwhile", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "carddemo.accounts", mtest.FirstBatch, bson.D{
				{Key: "account_id", Value: "00000000001"},
				{Key: "current_balance", Value: 50.0},
			}),
		)

		err := NewAccountRepository(mt.DB).ApplyPayment(context.Background(), "00000000001", 194.00)
		assert.ErrorIs(mt, err, domain.ErrConcurrentUpdate)
	})

	mt.Run("unknown account", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "carddemo.accounts", mtest.FirstBatch),
		)

		err := NewAccountRepository(mt.DB).ApplyPayment(context.Background(), "99999999999", 10)
		assert.ErrorIs(mt, err, domain.ErrAccountNotFound)
	})
}

func TestCardRepository_FindByNumber(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "carddemo.cards", mtest.FirstBatch, bson.D{
			{Key: "card_number", Value: "0500024453765740"},
			{Key: "account_id", Value: "00000000001"},
			{Key: "embossed_name", Value: "JOHN DOE"},
			{Key: "expiry_month", Value: 3},
			{Key: "expiry_year", Value: 2027},
			{Key: "active_status", Value: "Y"},
		}))

		c, err := NewCardRepository(mt.DB).FindByNumber(context.Background(), "0500024453765740")
		require.NoError(mt, err)
		assert.Equal(mt, "00000000001", c.AccountID)
		assert.Equal(mt, 2027, c.ExpiryYear)
	})

	mt.Run("duplicate create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Code: 11000, Message: "duplicate key error"}))

		err := NewCardRepository(mt.DB).Create(context.Background(), &domain.Card{CardNumber: "0500024453765740"})
		assert.ErrorIs(mt, err, domain.ErrCardExists)
	})
}

func TestTransactionRepository_Summarize(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("totals", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "carddemo.transactions", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: 3},
			{Key: "total", Value: 120.25},
		}))

		count, total, err := NewTransactionRepository(mt.DB).Summarize(context.Background(), ports.TransactionFilter{})
		require.NoError(mt, err)
		assert.Equal(mt, 3, count)
		assert.Equal(mt, 120.25, total)
	})

	mt.Run("no rows", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "carddemo.transactions", mtest.FirstBatch))

		count, total, err := NewTransactionRepository(mt.DB).Summarize(context.Background(), ports.TransactionFilter{AccountID: "1"})
		require.NoError(mt, err)
		assert.Zero(mt, count)
		assert.Zero(mt, total)
	})
}

func TestTransactionQuery(t *testing.T) {
	assert.Empty(t, transactionQuery(ports.TransactionFilter{}))

	q := transactionQuery(ports.TransactionFilter{AccountID: "00000000001"})
	assert.Equal(t, "00000000001", q["account_id"])
	assert.NotContains(t, q, "processed_at")
}
