package pricing

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"plain rupee", "₹999", 999},
		{"lakh format keeps magnitude", "₹1,37,790", 137790},
		{"thousand separator", "₹1,299", 1299},
		{"paise correction", "100.00", 1},
		{"paise correction with symbol", "₹499.00", 5},
		{"no correction above threshold", "1499.00", 1499},
		{"no correction with comma", "1,000.00", 1000},
		{"decimal rounds", "249.50", 250},
		{"whole number", "650", 650},
		{"garbage", "out of stock", 0},
		{"symbols only", "₹₹", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.in))
		})
	}
}

func TestParseIdempotentOnOwnOutput(t *testing.T) {
	inputs := []string{"₹999", "₹1,37,790", "100.00", "249.50", "650", ""}
	for _, in := range inputs {
		once := Parse(in)
		again := Parse(strconv.Itoa(once))
		assert.Equal(t, once, again, "input %q", in)
	}
}

func TestParsePaiseHeuristicBounds(t *testing.T) {
	// Comma-free "<digits>.00" under 1000 divides by 100.
	assert.Equal(t, 1, Parse("100.00"))
	assert.Equal(t, 10, Parse("999.00"))
	// A comma anywhere disables the correction regardless of magnitude.
	assert.Equal(t, 100, Parse("1,00.00"))
	// Non-zero fractional parts are real decimals, not paise.
	assert.Equal(t, 100, Parse("99.99"))
}
