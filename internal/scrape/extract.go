package scrape

import "time"

// PageData is the raw extraction result before price normalization. Any
// field may be empty when no selector in its chain matched.
type PageData struct {
	Title             string
	ImageURL          string
	PriceText         string
	OriginalPriceText string
}

// fieldSelectors is an ordered fallback chain for one logical field. Amazon
// renders several template variants, so each field is tried against multiple
// selectors; the first one yielding non-empty content wins.
type fieldSelectors struct {
	selectors []string
	attr      string // when set, read this attribute instead of text content
}

var (
	titleField = fieldSelectors{selectors: []string{
		"#productTitle",
		`h1[data-automation-id="product-title"]`,
		"h1",
	}}
	imageField = fieldSelectors{attr: "src", selectors: []string{
		"#landingImage",
		"#imgBlkFront",
		"#main-image",
		".a-dynamic-image",
	}}
	priceField = fieldSelectors{selectors: []string{
		".a-price-whole",
		".a-offscreen",
		".a-price .a-offscreen",
		`[data-a-color="price"] .a-offscreen`,
	}}
	strikePriceField = fieldSelectors{selectors: []string{
		".a-text-strike",
		".a-price.a-text-price .a-offscreen",
		".a-price.a-text-price span",
	}}

	// quickPriceField is the cheaper chain used by price-only refreshes.
	quickPriceField = fieldSelectors{selectors: []string{
		".a-price-whole",
		".a-offscreen",
	}}
)

func (f fieldSelectors) extract(p RenderedPage) string {
	for _, sel := range f.selectors {
		var v string
		if f.attr != "" {
			v = p.Attr(sel, f.attr)
		} else {
			v = p.Text(sel)
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// extractProductData pulls all product fields from a rendered page.
func extractProductData(p RenderedPage) PageData {
	return PageData{
		Title:             titleField.extract(p),
		ImageURL:          imageField.extract(p),
		PriceText:         priceField.extract(p),
		OriginalPriceText: strikePriceField.extract(p),
	}
}

// waitForTitle blocks until any title selector renders, trying the chain in
// priority order. A miss is tolerated; extraction still runs its own chain.
func waitForTitle(p RenderedPage, timeout time.Duration) {
	for _, sel := range titleField.selectors {
		if p.WaitVisible(sel, timeout) {
			return
		}
	}
}
