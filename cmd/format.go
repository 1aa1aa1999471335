package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gnithesh/productowl/internal/models"
)

// printSnapshotCard prints a scraped snapshot in a human-friendly card layout.
func printSnapshotCard(rawURL string, snap models.Snapshot) {
	title := snap.Title
	if title == "" {
		title = "(no title)"
	}
	fmt.Fprintf(os.Stdout, " %s\n", title)

	priceLine := "    Price: " + formatPrice(snap.CurrentPrice)
	if snap.OriginalPrice > snap.CurrentPrice {
		off := 0
		if snap.OriginalPrice > 0 {
			off = (snap.OriginalPrice - snap.CurrentPrice) * 100 / snap.OriginalPrice
		}
		priceLine += fmt.Sprintf("  (was %s, -%d%%)", formatPrice(snap.OriginalPrice), off)
	}
	fmt.Fprintln(os.Stdout, priceLine)

	fmt.Fprintf(os.Stdout, "    Low: %s  |  High: %s  |  Avg: %s\n",
		formatPrice(snap.LowestPrice), formatPrice(snap.HighestPrice), formatPrice(snap.AveragePrice))
	if snap.ImageURL != "" {
		fmt.Fprintf(os.Stdout, "    Image: %s\n", snap.ImageURL)
	}
	fmt.Fprintf(os.Stdout, "    %s\n", cleanURL(rawURL))
}

// formatPrice formats a rupee amount with Indian digit grouping,
// e.g. 137790 -> "₹1,37,790".
func formatPrice(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return "₹" + s
	}
	parts := []string{s[len(s)-3:]}
	s = s[:len(s)-3]
	for len(s) > 2 {
		parts = append([]string{s[len(s)-2:]}, parts...)
		s = s[:len(s)-2]
	}
	parts = append([]string{s}, parts...)
	return "₹" + strings.Join(parts, ",")
}

// cleanURL strips tracking query params (ref, tag, psc, etc.) and returns
// just the product page URL.
func cleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}
