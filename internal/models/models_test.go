package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func seedProduct() *Product {
	now := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	return &Product{
		Title:         "Test Product",
		CurrentPrice:  1000,
		OriginalPrice: 1200,
		HighestPrice:  1200,
		LowestPrice:   1000,
		AveragePrice:  1100,
		PriceHistory:  []PricePoint{{Price: 1000, Date: now}},
		CreatedAt:     now,
		LastUpdated:   now,
	}
}

func TestApplyPriceOrderingInvariant(t *testing.T) {
	sequences := [][]int{
		{900, 950, 800},
		{1000, 1000, 1000},
		{2000, 100, 2000, 100},
		{0, 500},
	}
	for _, seq := range sequences {
		p := seedProduct()
		for _, price := range seq {
			p.ApplyPrice(price, time.Now())
			assert.LessOrEqual(t, p.LowestPrice, p.CurrentPrice, "seq %v", seq)
			assert.GreaterOrEqual(t, p.HighestPrice, p.CurrentPrice, "seq %v", seq)
		}
	}
}

func TestApplyPriceHistoryAppendOnly(t *testing.T) {
	p := seedProduct()
	t1 := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 3, 7, 0, 0, 0, time.UTC)

	p.ApplyPrice(900, t1)
	p.ApplyPrice(900, t2) // repeats are kept, never deduplicated

	assert.Len(t, p.PriceHistory, 3)
	assert.Equal(t, 1000, p.PriceHistory[0].Price)
	assert.Equal(t, 900, p.PriceHistory[1].Price)
	assert.Equal(t, 900, p.PriceHistory[2].Price)
	assert.True(t, p.PriceHistory[1].Date.Before(p.PriceHistory[2].Date))
}

func TestApplyPriceAverageOverFullHistory(t *testing.T) {
	p := seedProduct() // history starts at [1000]
	for _, price := range []int{900, 1100, 700} {
		p.ApplyPrice(price, time.Now())
	}
	// mean(1000, 900, 1100, 700) = 925
	assert.Equal(t, 925, p.AveragePrice)

	p.ApplyPrice(333, time.Now())
	// mean(1000, 900, 1100, 700, 333) = 806.6 → 807
	assert.Equal(t, 807, p.AveragePrice)
}

func TestApplyPriceStats(t *testing.T) {
	p := seedProduct()

	p.ApplyPrice(1500, time.Now())
	assert.Equal(t, 1500, p.CurrentPrice)
	assert.Equal(t, 1500, p.HighestPrice)
	assert.Equal(t, 1000, p.LowestPrice)

	p.ApplyPrice(800, time.Now())
	assert.Equal(t, 800, p.CurrentPrice)
	assert.Equal(t, 1500, p.HighestPrice)
	assert.Equal(t, 800, p.LowestPrice)
}

func TestAveragePriceEmptyHistoryFallsBack(t *testing.T) {
	p := &Product{CurrentPrice: 777}
	assert.Equal(t, 777, p.averagePrice())
}
