package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gnithesh/productowl/internal/models"
)

func TestEvaluateThreshold(t *testing.T) {
	cases := []struct {
		name     string
		baseline int
		newPrice int
		notify   bool
		drop     float64
	}{
		{"35 percent drop fires", 1000, 650, true, 35.0},
		{"28 percent drop holds", 1000, 720, false, 28.0},
		{"exactly 30 percent fires", 1000, 700, true, 30.0},
		{"price rise", 1000, 1200, false, -20.0},
		{"unchanged", 1000, 1000, false, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := &models.Subscription{OriginalPrice: tc.baseline}
			d := Evaluate(sub, tc.newPrice)
			assert.Equal(t, tc.notify, d.ShouldNotify)
			assert.InDelta(t, tc.drop, d.DropPercent, 0.001)
		})
	}
}

func TestEvaluateUsesSubscriptionBaseline(t *testing.T) {
	// The product originally sold for 2000 and already dropped to 1000 when
	// the user subscribed. At 650 the subscriber has seen a 35% drop even
	// though the product is 67.5% below its all-time original price.
	sub := &models.Subscription{OriginalPrice: 1000}
	d := Evaluate(sub, 650)
	assert.True(t, d.ShouldNotify)
	assert.InDelta(t, 35.0, d.DropPercent, 0.001)
}

func TestEvaluateZeroBaseline(t *testing.T) {
	d := Evaluate(&models.Subscription{OriginalPrice: 0}, 100)
	assert.False(t, d.ShouldNotify)
}

func seedTrackedProduct(t *testing.T, products *fakeProducts, subs *fakeSubs, baseline int) (*models.Product, *models.Subscription) {
	t.Helper()
	p := &models.Product{
		AmazonURL: "u1", Title: "Widget",
		CurrentPrice: baseline, OriginalPrice: baseline,
		HighestPrice: baseline, LowestPrice: baseline, AveragePrice: baseline,
		PriceHistory: []models.PricePoint{{Price: baseline, Date: time.Now()}},
	}
	require.NoError(t, products.Insert(context.Background(), p))
	sub := &models.Subscription{
		UserID: primitive.NewObjectID(), Email: "a@b.c",
		ProductID: p.ID, OriginalPrice: baseline, IsActive: true, CreatedAt: time.Now(),
	}
	require.NoError(t, subs.Insert(context.Background(), sub))
	return p, sub
}

func TestCheckSubscriptionNotifies(t *testing.T) {
	tr, products, subs, scraper, mailer := newTestTracker()
	p, sub := seedTrackedProduct(t, products, subs, 1000)
	scraper.prices["u1"] = 650

	result, err := tr.CheckSubscription(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, ResultNotified, result)
	assert.Equal(t, []string{"a@b.c"}, mailer.dropped)

	stored := subs.get(sub.ID)
	require.NotNil(t, stored.LastNotified)
	assert.Empty(t, stored.NotifyError)

	updated, _ := products.FindByID(context.Background(), p.ID)
	assert.Equal(t, 650, updated.CurrentPrice)
	assert.Len(t, updated.PriceHistory, 2)
}

func TestCheckSubscriptionBelowThreshold(t *testing.T) {
	tr, products, subs, scraper, mailer := newTestTracker()
	_, sub := seedTrackedProduct(t, products, subs, 1000)
	scraper.prices["u1"] = 720

	result, err := tr.CheckSubscription(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, ResultUpdated, result)
	assert.Empty(t, mailer.dropped)
	assert.Nil(t, subs.get(sub.ID).LastNotified)
}

func TestCheckSubscriptionUnknownPriceSkips(t *testing.T) {
	tr, products, subs, scraper, _ := newTestTracker()
	p, sub := seedTrackedProduct(t, products, subs, 1000)
	scraper.prices["u1"] = 0

	result, err := tr.CheckSubscription(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, result)

	stored, _ := products.FindByID(context.Background(), p.ID)
	assert.Len(t, stored.PriceHistory, 1, "unknown price must not touch history")
}

func TestCheckSubscriptionMissingProductSkips(t *testing.T) {
	tr, _, _, _, _ := newTestTracker()
	sub := &models.Subscription{ID: primitive.NewObjectID(), ProductID: primitive.NewObjectID()}

	result, err := tr.CheckSubscription(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, result)
}

func TestCheckSubscriptionScrapeFailure(t *testing.T) {
	tr, products, subs, scraper, _ := newTestTracker()
	_, sub := seedTrackedProduct(t, products, subs, 1000)
	scraper.scrapeErr["u1"] = errors.New("timeout")

	_, err := tr.CheckSubscription(context.Background(), sub)
	assert.ErrorContains(t, err, "timeout")
}

func TestCheckSubscriptionDeliveryFailure(t *testing.T) {
	tr, products, subs, scraper, mailer := newTestTracker()
	_, sub := seedTrackedProduct(t, products, subs, 1000)
	scraper.prices["u1"] = 650
	mailer.dropErr = errors.New("mail api 500")

	result, err := tr.CheckSubscription(context.Background(), sub)
	require.NoError(t, err, "delivery failure must not fail the item")
	assert.Equal(t, ResultUpdated, result)

	stored := subs.get(sub.ID)
	assert.Nil(t, stored.LastNotified, "lastNotified only set on successful delivery")
	assert.Equal(t, "mail api 500", stored.NotifyError)
}

func TestCheckSubscriptionRenotifiesWhileDropHolds(t *testing.T) {
	// Observed behavior: a drop that stays at or above the threshold fires
	// again on every run; lastNotified is recorded but never consulted.
	tr, products, subs, scraper, mailer := newTestTracker()
	_, sub := seedTrackedProduct(t, products, subs, 1000)
	scraper.prices["u1"] = 650

	for i := 0; i < 3; i++ {
		fresh := subs.get(sub.ID)
		result, err := tr.CheckSubscription(context.Background(), fresh)
		require.NoError(t, err)
		assert.Equal(t, ResultNotified, result)
	}
	assert.Len(t, mailer.dropped, 3)
}
