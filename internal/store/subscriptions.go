package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gnithesh/productowl/internal/models"
)

// SubscriptionRepository stores tracking subscriptions. The compound unique
// index enforces at most one subscription per (user, product) pair at the
// database level.
type SubscriptionRepository struct {
	collection *mongo.Collection
}

func (r *SubscriptionRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Insert creates a subscription. ErrDuplicate means the user already tracks
// the product.
func (r *SubscriptionRepository) Insert(ctx context.Context, sub *models.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, sub)
	return mapWriteErr(err)
}

// FindActive returns every active subscription in creation order. Products
// are not resolved here; callers look them up per item so one dangling
// reference cannot fail the whole load.
func (r *SubscriptionRepository) FindActive(ctx context.Context) ([]models.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// FindByUser returns a user's subscriptions, newest first.
func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// FindByUserAndProduct returns the subscription for a (user, product) pair.
func (r *SubscriptionRepository) FindByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*models.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var sub models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "productId": productID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Update replaces a subscription document.
func (r *SubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": sub.ID}, sub)
	if err != nil {
		return mapWriteErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProduct removes every subscription referencing a product.
func (r *SubscriptionRepository) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"productId": productID})
	return err
}
