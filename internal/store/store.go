// Package store persists products, subscriptions and users in MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store bundles the collection-backed repositories.
type Store struct {
	client        *mongo.Client
	Products      *ProductRepository
	Subscriptions *SubscriptionRepository
	Users         *UserRepository
}

// Connect dials MongoDB, ensures the unique indexes and returns the
// repositories.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:        client,
		Products:      &ProductRepository{collection: db.Collection("products")},
		Subscriptions: &SubscriptionRepository{collection: db.Collection("subscriptions")},
		Users:         &UserRepository{collection: db.Collection("users")},
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if err := s.Products.ensureIndexes(ctx); err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}
	if err := s.Subscriptions.ensureIndexes(ctx); err != nil {
		return fmt.Errorf("subscription indexes: %w", err)
	}
	if err := s.Users.ensureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
