package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricePoint is one sampled price in a product's history.
type PricePoint struct {
	Price int       `bson:"price" json:"price"`
	Date  time.Time `bson:"date" json:"date"`
}

// Product is a tracked Amazon product with its running price statistics.
// The amazonUrl field carries a unique index, so one URL maps to exactly
// one product document.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AmazonURL     string             `bson:"amazonUrl" json:"amazonUrl"`
	Title         string             `bson:"title" json:"title"`
	ImageURL      string             `bson:"imageUrl" json:"imageUrl"`
	CurrentPrice  int                `bson:"currentPrice" json:"currentPrice"`
	OriginalPrice int                `bson:"originalPrice" json:"originalPrice"`
	HighestPrice  int                `bson:"highestPrice" json:"highestPrice"`
	LowestPrice   int                `bson:"lowestPrice" json:"lowestPrice"`
	AveragePrice  int                `bson:"averagePrice" json:"averagePrice"`
	PriceHistory  []PricePoint       `bson:"priceHistory" json:"priceHistory"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	LastUpdated   time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}

// ApplyPrice records a freshly scraped price: it becomes the current price,
// is appended to the history (never deduplicated; the daily check cadence is
// the sampling rate), and the min/max/average stats are recomputed over the
// full history.
func (p *Product) ApplyPrice(newPrice int, now time.Time) {
	p.CurrentPrice = newPrice
	p.LastUpdated = now
	p.PriceHistory = append(p.PriceHistory, PricePoint{Price: newPrice, Date: now})
	if newPrice > p.HighestPrice {
		p.HighestPrice = newPrice
	}
	if newPrice < p.LowestPrice {
		p.LowestPrice = newPrice
	}
	p.AveragePrice = p.averagePrice()
}

// averagePrice is the rounded mean over the price history. With an empty
// history it falls back to the current price.
func (p *Product) averagePrice() int {
	if len(p.PriceHistory) == 0 {
		return p.CurrentPrice
	}
	total := 0
	for _, e := range p.PriceHistory {
		total += e.Price
	}
	return int(float64(total)/float64(len(p.PriceHistory)) + 0.5)
}

// Subscription ties a user to a product they want price alerts for.
// OriginalPrice is the baseline captured at subscribe time; drop percentages
// are always measured against it, not against the product's own stats.
// (userId, productId) carries a unique compound index.
type Subscription struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Email         string             `bson:"email" json:"email"`
	ProductID     primitive.ObjectID `bson:"productId" json:"productId"`
	OriginalPrice int                `bson:"originalPrice" json:"originalPrice"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	LastNotified  *time.Time         `bson:"lastNotified" json:"lastNotified"`
	NotifyError   string             `bson:"notifyError,omitempty" json:"-"`

	// Product is the resolved product document, populated on load when
	// requested. Never persisted on the subscription itself.
	Product *Product `bson:"-" json:"product,omitempty"`
}

// User is a registered account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash []byte             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Snapshot is the transient result of one full product scrape, not yet
// merged into a persisted product.
type Snapshot struct {
	Title         string `json:"title"`
	ImageURL      string `json:"imageUrl"`
	CurrentPrice  int    `json:"currentPrice"`
	OriginalPrice int    `json:"originalPrice"`
	HighestPrice  int    `json:"highestPrice"`
	LowestPrice   int    `json:"lowestPrice"`
	AveragePrice  int    `json:"averagePrice"`
}

// RunSummary reports one scheduled price-check pass.
type RunSummary struct {
	Checked  int `json:"checked"`
	Updated  int `json:"updated"`
	Notified int `json:"notified"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
