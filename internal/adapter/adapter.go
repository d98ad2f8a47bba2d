package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
)

// ErrSelectorMiss means an expected markup element was absent; the source
// has likely changed its page layout.
var ErrSelectorMiss = errors.New("expected selector matched nothing")

// ParseError reports markup that no longer matches the adapter's selector
// configuration.
type ParseError struct {
	Competitor string
	URL        string
	Selector   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: selector %q matched nothing on %s", e.Competitor, e.Selector, e.URL)
}

func (e *ParseError) Unwrap() error { return ErrSelectorMiss }

// SourceAdapter extracts product listings for one tracked brand from one
// competitor site. An empty result means the brand is not carried there;
// an error means a fetch or parse infrastructure failure, which callers
// treat as "no data" rather than aborting the sweep.
type SourceAdapter interface {
	Competitor() string
	Extract(ctx context.Context, brand string) ([]models.ProductListing, error)
}

// NoteSource is implemented by adapters that never fetch and always report
// a fixed informational note instead of listings.
type NoteSource interface {
	Note() string
}

// matchesBrand reports whether text contains the brand token,
// case-insensitively. Listing-page link text is matched the same way as
// confirmed product titles.
func matchesBrand(text, brand string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(brand))
}

// firstText returns the trimmed text of the first element matching the
// selector within sel, or "" when nothing matches.
func firstText(sel *goquery.Selection, selector string) string {
	return trimmedText(sel.Find(selector).First())
}

func trimmedText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// absoluteURL resolves href against the site base URL. Already-absolute
// hrefs pass through unchanged.
func absoluteURL(baseURL, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(baseURL, "/") + href
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + href
}

func parseDocument(body string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}
