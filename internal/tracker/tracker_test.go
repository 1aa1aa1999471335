package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gnithesh/productowl/internal/models"
	"github.com/gnithesh/productowl/internal/store"
)

type fakeProducts struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.Product
	byURL map[string]*models.Product

	replaceErr error
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{
		byID:  make(map[primitive.ObjectID]*models.Product),
		byURL: make(map[string]*models.Product),
	}
}

func (f *fakeProducts) Insert(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byURL[p.AmazonURL]; ok {
		return store.ErrDuplicate
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	f.byID[p.ID] = &cp
	f.byURL[p.AmazonURL] = &cp
	return nil
}

func (f *fakeProducts) FindByURL(_ context.Context, url string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byURL[url]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Replace(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	if _, ok := f.byID[p.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	f.byURL[p.AmazonURL] = &cp
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(f.byURL, p.AmazonURL)
	delete(f.byID, id)
	return nil
}

type fakeSubs struct {
	mu      sync.Mutex
	subs    map[primitive.ObjectID]*models.Subscription
	deleted []primitive.ObjectID
}

func newFakeSubs() *fakeSubs {
	return &fakeSubs{subs: make(map[primitive.ObjectID]*models.Subscription)}
}

func (f *fakeSubs) Insert(_ context.Context, sub *models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.UserID == sub.UserID && s.ProductID == sub.ProductID {
			return store.ErrDuplicate
		}
	}
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeSubs) Update(_ context.Context, sub *models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeSubs) DeleteByProduct(_ context.Context, productID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, productID)
	for id, s := range f.subs {
		if s.ProductID == productID {
			delete(f.subs, id)
		}
	}
	return nil
}

func (f *fakeSubs) get(id primitive.ObjectID) *models.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[id]
}

type fakeScraper struct {
	mu        sync.Mutex
	snapshots map[string]models.Snapshot
	prices    map[string]int
	scrapeErr map[string]error
	calls     int
}

func (f *fakeScraper) ScrapeProduct(_ context.Context, url string) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.scrapeErr[url]; err != nil {
		return models.Snapshot{}, err
	}
	return f.snapshots[url], nil
}

func (f *fakeScraper) ScrapePriceUpdate(_ context.Context, url string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.scrapeErr[url]; err != nil {
		return 0, err
	}
	return f.prices[url], nil
}

type fakeMailer struct {
	mu       sync.Mutex
	dropErr  error
	welcErr  error
	dropped  []string
	welcomed []string
}

func (f *fakeMailer) SendPriceDropNotice(_ context.Context, email string, _ *models.Product, _, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropErr != nil {
		return f.dropErr
	}
	f.dropped = append(f.dropped, email)
	return nil
}

func (f *fakeMailer) SendWelcomeNotice(_ context.Context, email string, _ *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.welcErr != nil {
		return f.welcErr
	}
	f.welcomed = append(f.welcomed, email)
	return nil
}

func newTestTracker() (*Tracker, *fakeProducts, *fakeSubs, *fakeScraper, *fakeMailer) {
	products := newFakeProducts()
	subs := newFakeSubs()
	scraper := &fakeScraper{
		snapshots: make(map[string]models.Snapshot),
		prices:    make(map[string]int),
		scrapeErr: make(map[string]error),
	}
	mailer := &fakeMailer{}
	tr := New(products, subs, scraper, mailer)
	return tr, products, subs, scraper, mailer
}

func TestScrapeAndCreate(t *testing.T) {
	tr, products, _, scraper, _ := newTestTracker()
	scraper.snapshots["u1"] = models.Snapshot{
		Title: "Widget", ImageURL: "img", CurrentPrice: 800, OriginalPrice: 1000,
		HighestPrice: 1000, LowestPrice: 800, AveragePrice: 900,
	}

	p, err := tr.ScrapeAndCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Title)
	assert.Equal(t, 800, p.CurrentPrice)
	require.Len(t, p.PriceHistory, 1)
	assert.Equal(t, 800, p.PriceHistory[0].Price)
	assert.False(t, p.CreatedAt.IsZero())

	stored, err := products.FindByURL(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestScrapeAndCreateIdempotentOnURL(t *testing.T) {
	tr, _, _, scraper, _ := newTestTracker()
	scraper.snapshots["u1"] = models.Snapshot{Title: "Widget", CurrentPrice: 800, OriginalPrice: 800}

	first, err := tr.ScrapeAndCreate(context.Background(), "u1")
	require.NoError(t, err)
	callsAfterFirst := scraper.calls

	second, err := tr.ScrapeAndCreate(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.PriceHistory, 1, "existing product must not gain history")
	assert.Equal(t, callsAfterFirst, scraper.calls, "existing product must not be re-scraped")
}

func TestScrapeAndCreatePropagatesScrapeFailure(t *testing.T) {
	tr, _, _, scraper, _ := newTestTracker()
	scraper.scrapeErr["bad"] = errors.New("navigation timeout")

	_, err := tr.ScrapeAndCreate(context.Background(), "bad")
	assert.ErrorContains(t, err, "navigation timeout")
}

func TestRefreshPrice(t *testing.T) {
	tr, products, _, scraper, _ := newTestTracker()
	p := &models.Product{
		AmazonURL: "u1", Title: "Widget",
		CurrentPrice: 1000, OriginalPrice: 1000, HighestPrice: 1000, LowestPrice: 1000,
		AveragePrice: 1000, PriceHistory: []models.PricePoint{{Price: 1000, Date: time.Now()}},
	}
	require.NoError(t, products.Insert(context.Background(), p))
	scraper.prices["u1"] = 750

	updated, err := tr.RefreshPrice(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 750, updated.CurrentPrice)
	assert.Equal(t, 750, updated.LowestPrice)
	assert.Len(t, updated.PriceHistory, 2)

	stored, _ := products.FindByID(context.Background(), p.ID)
	assert.Equal(t, 750, stored.CurrentPrice)
}

func TestRefreshPriceUnknownSentinel(t *testing.T) {
	tr, products, _, scraper, _ := newTestTracker()
	p := &models.Product{AmazonURL: "u1", CurrentPrice: 1000}
	require.NoError(t, products.Insert(context.Background(), p))
	scraper.prices["u1"] = 0

	_, err := tr.RefreshPrice(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestSubscribeCapturesBaseline(t *testing.T) {
	tr, products, _, _, mailer := newTestTracker()
	p := &models.Product{AmazonURL: "u1", Title: "Widget", CurrentPrice: 650}
	require.NoError(t, products.Insert(context.Background(), p))
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c"}

	sub, err := tr.Subscribe(context.Background(), user, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 650, sub.OriginalPrice)
	assert.True(t, sub.IsActive)
	assert.Nil(t, sub.LastNotified)
	assert.Equal(t, []string{"a@b.c"}, mailer.welcomed)
}

func TestSubscribeDuplicate(t *testing.T) {
	tr, products, _, _, _ := newTestTracker()
	p := &models.Product{AmazonURL: "u1", CurrentPrice: 100}
	require.NoError(t, products.Insert(context.Background(), p))
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c"}

	_, err := tr.Subscribe(context.Background(), user, p.ID)
	require.NoError(t, err)
	_, err = tr.Subscribe(context.Background(), user, p.ID)
	assert.ErrorIs(t, err, ErrAlreadyTracking)
}

func TestSubscribeWelcomeFailureIsRecordedNotReturned(t *testing.T) {
	tr, products, subs, _, mailer := newTestTracker()
	mailer.welcErr = errors.New("smtp down")
	p := &models.Product{AmazonURL: "u1", CurrentPrice: 100}
	require.NoError(t, products.Insert(context.Background(), p))
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c"}

	sub, err := tr.Subscribe(context.Background(), user, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "smtp down", subs.get(sub.ID).NotifyError)
}

func TestDeleteProductRemovesSubscriptions(t *testing.T) {
	tr, products, subs, _, _ := newTestTracker()
	p := &models.Product{AmazonURL: "u1", CurrentPrice: 100}
	require.NoError(t, products.Insert(context.Background(), p))
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.c"}
	_, err := tr.Subscribe(context.Background(), user, p.ID)
	require.NoError(t, err)

	require.NoError(t, tr.DeleteProduct(context.Background(), p.ID))

	_, err = products.FindByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, []primitive.ObjectID{p.ID}, subs.deleted)
	assert.Empty(t, subs.subs)
}
