package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPriceIndianGrouping(t *testing.T) {
	cases := map[int]string{
		0:        "₹0",
		7:        "₹7",
		999:      "₹999",
		1000:     "₹1,000",
		54999:    "₹54,999",
		137790:   "₹1,37,790",
		1234567:  "₹12,34,567",
		10000000: "₹1,00,00,000",
	}
	for n, want := range cases {
		assert.Equal(t, want, formatPrice(n), "n=%d", n)
	}
}

func TestCleanURLStripsQuery(t *testing.T) {
	got := cleanURL("https://www.amazon.in/dp/B0C1234567?ref=sr_1_1&tag=foo&psc=1")
	assert.Equal(t, "https://www.amazon.in/dp/B0C1234567", got)
}
