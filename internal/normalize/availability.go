package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AvailabilityRule classifies a page fragment as in stock or sold out.
// Marker selectors and the out-of-stock lexicon are per-source
// configuration, not global; sites phrase unavailability differently.
type AvailabilityRule struct {
	// MarkerSelector matches an explicit "not available" element.
	MarkerSelector string
	// Phrases are source-language out-of-stock phrases, matched
	// case-insensitively anywhere in the fragment or page text.
	Phrases []string
}

// Classify returns true when the product is considered available. The
// default is optimistic: absence of any negative signal means in stock.
func (r AvailabilityRule) Classify(fragment *goquery.Selection, text string) bool {
	if r.MarkerSelector != "" && fragment != nil {
		if fragment.Find(r.MarkerSelector).Length() > 0 {
			return false
		}
	}

	lower := strings.ToLower(text)
	for _, phrase := range r.Phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return false
		}
	}
	return true
}
