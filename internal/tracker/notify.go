package tracker

import (
	"context"
	"errors"
	"log"

	"github.com/gnithesh/productowl/internal/models"
	"github.com/gnithesh/productowl/internal/store"
)

// dropThresholdPercent is the minimum price drop, measured against the
// subscription's own baseline, that triggers an alert.
const dropThresholdPercent = 30.0

// Decision is the outcome of evaluating a subscription against a fresh price.
type Decision struct {
	ShouldNotify bool
	DropPercent  float64
}

// Evaluate measures newPrice against the price captured when the
// subscription was created. The product's all-time original price plays no
// part: a subscription opened after earlier drops measures from its own
// starting point. A drop that stays above the threshold fires again on every
// check; lastNotified is bookkeeping only.
func Evaluate(sub *models.Subscription, newPrice int) Decision {
	if sub.OriginalPrice <= 0 {
		return Decision{}
	}
	drop := float64(sub.OriginalPrice-newPrice) / float64(sub.OriginalPrice) * 100
	return Decision{
		ShouldNotify: drop >= dropThresholdPercent,
		DropPercent:  drop,
	}
}

// CheckResult classifies one subscription's outcome within a scheduled run.
type CheckResult int

const (
	// ResultSkipped: the product was missing or the price came back unknown.
	ResultSkipped CheckResult = iota
	// ResultUpdated: the price was recorded, no notification was due.
	ResultUpdated
	// ResultNotified: the price was recorded and an alert was delivered.
	ResultNotified
)

// CheckSubscription runs the full per-item pipeline for one active
// subscription: scrape, price update, notification decision, bookkeeping.
// A returned error marks the item failed; the caller isolates it from the
// rest of the batch.
func (t *Tracker) CheckSubscription(ctx context.Context, sub *models.Subscription) (CheckResult, error) {
	p, err := t.products.FindByID(ctx, sub.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("tracker: product %s missing for subscription %s", sub.ProductID.Hex(), sub.ID.Hex())
		return ResultSkipped, nil
	}
	if err != nil {
		return ResultSkipped, err
	}

	price, err := t.scraper.ScrapePriceUpdate(ctx, p.AmazonURL)
	if err != nil {
		return ResultSkipped, err
	}
	if price == 0 {
		log.Printf("tracker: no current price for %q", p.Title)
		return ResultSkipped, nil
	}

	if err := t.UpdatePrice(ctx, p, price); err != nil {
		return ResultSkipped, err
	}

	d := Evaluate(sub, price)
	if !d.ShouldNotify {
		log.Printf("tracker: %q dropped %.1f%%, below threshold", p.Title, d.DropPercent)
		return ResultUpdated, nil
	}

	log.Printf("tracker: %q dropped %.1f%%, notifying %s", p.Title, d.DropPercent, sub.Email)
	if err := t.mailer.SendPriceDropNotice(ctx, sub.Email, p, price, sub.OriginalPrice); err != nil {
		// Delivery failure is recorded for inspection and retried naturally
		// on the next scheduled run; it never fails the item.
		log.Printf("tracker: price drop email to %s failed: %v", sub.Email, err)
		sub.NotifyError = err.Error()
		if uerr := t.subs.Update(ctx, sub); uerr != nil {
			log.Printf("tracker: record delivery failure: %v", uerr)
		}
		return ResultUpdated, nil
	}

	now := t.now()
	sub.LastNotified = &now
	sub.NotifyError = ""
	if err := t.subs.Update(ctx, sub); err != nil {
		log.Printf("tracker: record lastNotified: %v", err)
	}
	return ResultNotified, nil
}
