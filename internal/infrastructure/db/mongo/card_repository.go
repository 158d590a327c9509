package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

type CardRepository struct {
	coll *mongo.Collection
}

func NewCardRepository(db *mongo.Database) *CardRepository {
	return &CardRepository{coll: db.Collection(collectionCards)}
}

func (r *CardRepository) FindByNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	var c domain.Card
	if err := r.coll.FindOne(ctx, bson.M{"card_number": cardNumber}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("find card: %w", err)
	}
	return &c, nil
}

func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	if _, err := r.coll.InsertOne(ctx, card); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCardExists
		}
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (r *CardRepository) Update(ctx context.Context, cardNumber string, update domain.CardUpdate) (*domain.Card, error) {
	set := bson.M{
		"embossed_name": update.EmbossedName,
		"expiry_month":  update.ExpiryMonth,
		"expiry_year":   update.ExpiryYear,
		"active_status": update.ActiveStatus,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c domain.Card
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"card_number": cardNumber}, bson.M{"$set": set}, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("update card: %w", err)
	}
	return &c, nil
}

func (r *CardRepository) List(ctx context.Context, accountID string, page ports.PageRequest) ([]*domain.Card, int64, error) {
	filter := bson.M{}
	if accountID != "" {
		filter["account_id"] = accountID
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count cards: %w", err)
	}

	cur, err := r.coll.Find(ctx, filter, findOptions("card_number", page))
	if err != nil {
		return nil, 0, fmt.Errorf("list cards: %w", err)
	}
	cards := []*domain.Card{}
	if err := cur.All(ctx, &cards); err != nil {
		return nil, 0, fmt.Errorf("decode cards: %w", err)
	}
	return cards, total, nil
}
