package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

type TransactionRepository struct {
	coll *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{coll: db.Collection(collectionTransactions)}
}

func (r *TransactionRepository) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := r.coll.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&tx); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &tx, nil
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *domain.Transaction) error {
	if _, err := r.coll.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, filter ports.TransactionFilter, page ports.PageRequest) ([]*domain.Transaction, int64, error) {
	query := transactionQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	cur, err := r.coll.Find(ctx, query, findOptions("transaction_id", page))
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	txs := []*domain.Transaction{}
	if err := cur.All(ctx, &txs); err != nil {
		return nil, 0, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, total, nil
}

// Summarize counts and totals the matching transactions in one aggregation.
func (r *TransactionRepository) Summarize(ctx context.Context, filter ports.TransactionFilter) (int, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: transactionQuery(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("summarize transactions: %w", err)
	}
	var rows []struct {
		Count int     `bson:"count"`
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("decode summary: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Count, domain.RoundCents(rows[0].Total), nil
}

func transactionQuery(filter ports.TransactionFilter) bson.M {
	query := bson.M{}
	if filter.AccountID != "" {
		query["account_id"] = filter.AccountID
	}
	processed := bson.M{}
	if !filter.From.IsZero() {
		processed["$gte"] = filter.From.UTC()
	}
	if !filter.To.IsZero() {
		processed["$lte"] = filter.To.UTC()
	}
	if len(processed) > 0 {
		query["processed_at"] = processed
	}
	return query
}
