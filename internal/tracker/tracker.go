// Package tracker implements the price-monitoring pipeline: idempotent
// product creation from a scrape, the price-update rule, and the
// notification decision applied on every scheduled check.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/gnithesh/productowl/internal/models"
	"github.com/gnithesh/productowl/internal/store"
)

var (
	// ErrPriceUnavailable means the scrape succeeded but no price could be
	// extracted (the parser's 0 sentinel).
	ErrPriceUnavailable = errors.New("current price unavailable")
	// ErrAlreadyTracking means the user already has a subscription for the
	// product.
	ErrAlreadyTracking = errors.New("already tracking this product")
)

// ProductStore is the product persistence the pipeline needs.
type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByURL(ctx context.Context, amazonURL string) (*models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Replace(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SubscriptionStore is the subscription persistence the pipeline needs.
type SubscriptionStore interface {
	Insert(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) error
}

// PriceScraper produces product snapshots and price refreshes for a URL.
type PriceScraper interface {
	ScrapeProduct(ctx context.Context, url string) (models.Snapshot, error)
	ScrapePriceUpdate(ctx context.Context, url string) (int, error)
}

// Mailer delivers notification emails. Errors are reported back as values
// and never abort the pipeline.
type Mailer interface {
	SendPriceDropNotice(ctx context.Context, email string, product *models.Product, newPrice, baselinePrice int) error
	SendWelcomeNotice(ctx context.Context, email string, product *models.Product) error
}

// Tracker wires scraper, stores and mailer into the pipeline operations.
type Tracker struct {
	products ProductStore
	subs     SubscriptionStore
	scraper  PriceScraper
	mailer   Mailer

	group singleflight.Group
	now   func() time.Time
}

func New(products ProductStore, subs SubscriptionStore, scraper PriceScraper, mailer Mailer) *Tracker {
	return &Tracker{
		products: products,
		subs:     subs,
		scraper:  scraper,
		mailer:   mailer,
		now:      time.Now,
	}
}

// ScrapeAndCreate returns the product for url, scraping and creating it if
// it does not exist yet. The amazonUrl unique key makes creation idempotent;
// concurrent calls for the same URL are collapsed into one scrape.
func (t *Tracker) ScrapeAndCreate(ctx context.Context, url string) (*models.Product, error) {
	v, err, _ := t.group.Do(url, func() (any, error) {
		existing, err := t.products.FindByURL(ctx, url)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		snap, err := t.scraper.ScrapeProduct(ctx, url)
		if err != nil {
			return nil, err
		}

		now := t.now()
		p := &models.Product{
			AmazonURL:     url,
			Title:         snap.Title,
			ImageURL:      snap.ImageURL,
			CurrentPrice:  snap.CurrentPrice,
			OriginalPrice: snap.OriginalPrice,
			HighestPrice:  snap.HighestPrice,
			LowestPrice:   snap.LowestPrice,
			AveragePrice:  snap.AveragePrice,
			PriceHistory:  []models.PricePoint{{Price: snap.CurrentPrice, Date: now}},
			CreatedAt:     now,
			LastUpdated:   now,
		}
		if err := t.products.Insert(ctx, p); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				// Lost a create race; the winner's document is authoritative.
				return t.products.FindByURL(ctx, url)
			}
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

// UpdatePrice applies the price-update rule to the product and persists the
// whole document in one write.
func (t *Tracker) UpdatePrice(ctx context.Context, p *models.Product, newPrice int) error {
	p.ApplyPrice(newPrice, t.now())
	if err := t.products.Replace(ctx, p); err != nil {
		return fmt.Errorf("persist price update: %w", err)
	}
	return nil
}

// RefreshPrice re-scrapes the product's current price and applies the
// update rule. ErrPriceUnavailable is returned when the scrape yields the
// unknown-price sentinel.
func (t *Tracker) RefreshPrice(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	p, err := t.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	price, err := t.scraper.ScrapePriceUpdate(ctx, p.AmazonURL)
	if err != nil {
		return nil, err
	}
	if price == 0 {
		return nil, ErrPriceUnavailable
	}

	if err := t.UpdatePrice(ctx, p, price); err != nil {
		return nil, err
	}
	return p, nil
}

// Subscribe creates a tracking subscription for the user, capturing the
// product's current price as the notification baseline. The welcome email is
// best-effort; a delivery failure is recorded on the subscription, not
// returned.
func (t *Tracker) Subscribe(ctx context.Context, user *models.User, productID primitive.ObjectID) (*models.Subscription, error) {
	p, err := t.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		UserID:        user.ID,
		Email:         user.Email,
		ProductID:     p.ID,
		OriginalPrice: p.CurrentPrice,
		IsActive:      true,
		CreatedAt:     t.now(),
	}
	if err := t.subs.Insert(ctx, sub); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyTracking
		}
		return nil, err
	}

	if err := t.mailer.SendWelcomeNotice(ctx, user.Email, p); err != nil {
		log.Printf("tracker: welcome email to %s failed: %v", user.Email, err)
		sub.NotifyError = err.Error()
		if uerr := t.subs.Update(ctx, sub); uerr != nil {
			log.Printf("tracker: record welcome failure: %v", uerr)
		}
	}
	return sub, nil
}

// DeleteProduct removes a product together with every subscription that
// references it, so no dangling references remain.
func (t *Tracker) DeleteProduct(ctx context.Context, productID primitive.ObjectID) error {
	if err := t.products.Delete(ctx, productID); err != nil {
		return err
	}
	return t.subs.DeleteByProduct(ctx, productID)
}
