package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carddemo/terminal/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Collection names.
const (
	collectionUsers        = "users"
	collectionAccounts     = "accounts"
	collectionCards        = "cards"
	collectionTransactions = "transactions"
	collectionAudit        = "audit_events"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the unique keys the repositories rely on for
// duplicate detection plus the lookup indexes of the listing screens.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		collectionAccounts: {
			{Keys: bson.D{{Key: "account_id", Value: 1}}, Options: unique},
		},
		collectionCards: {
			{Keys: bson.D{{Key: "card_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "account_id", Value: 1}}},
		},
		collectionTransactions: {
			{Keys: bson.D{{Key: "transaction_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "processed_at", Value: 1}}},
		},
		collectionAudit: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		},
	}

	for name, indexes := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// findOptions sorts by key and cuts one page.
func findOptions(sortKey string, page ports.PageRequest) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: sortKey, Value: 1}}).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.PageSize))
}
