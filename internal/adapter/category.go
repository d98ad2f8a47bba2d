package adapter

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/kosmetik-price-monitor/internal/fetch"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
	"github.com/maltedev/kosmetik-price-monitor/internal/normalize"
)

// CategoryConfig parameterizes the two-hop category strategy: crawl one or
// more category listing pages for candidate product links, then confirm
// each candidate on its detail page.
type CategoryConfig struct {
	Competitor        string
	BaseURL           string
	CategoryPaths     []string
	LinkSelector      string
	TitleSelector     string
	PriceAttrSelector string // structured price, content attribute
	PriceTextSelector string // visible price fallback
	Availability      normalize.AvailabilityRule
}

// CategoryAdapter implements the category-listing → product-detail
// strategy. Link text on the listing page is not authoritative: every
// candidate's detail page is fetched to confirm the title actually carries
// the brand token and to read the accurate price.
type CategoryAdapter struct {
	cfg     CategoryConfig
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewCategoryAdapter(cfg CategoryConfig, fetcher fetch.Fetcher, logger *slog.Logger) *CategoryAdapter {
	return &CategoryAdapter{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "adapter", "competitor", cfg.Competitor),
	}
}

func (a *CategoryAdapter) Competitor() string { return a.cfg.Competitor }

func (a *CategoryAdapter) Extract(ctx context.Context, brand string) ([]models.ProductListing, error) {
	candidates, fetchErr := a.collectCandidates(ctx, brand)
	if len(candidates) == 0 && fetchErr != nil {
		return nil, fetchErr
	}

	var listings []models.ProductListing
	for _, href := range candidates {
		listing, ok := a.confirmCandidate(ctx, href, brand)
		if ok {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

// collectCandidates scans the configured category pages for product links
// whose URL or anchor text matches the brand token, de-duplicated by URL.
// Individual category page failures are tolerated as long as at least one
// page was readable.
func (a *CategoryAdapter) collectCandidates(ctx context.Context, brand string) ([]string, error) {
	var (
		candidates []string
		seen       = make(map[string]bool)
		lastErr    error
	)

	for _, path := range a.cfg.CategoryPaths {
		pageURL := a.cfg.BaseURL + path
		page, err := a.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			a.logger.Warn("category page fetch failed", "url", pageURL, "error", err)
			lastErr = err
			continue
		}

		doc, err := parseDocument(page.Body)
		if err != nil {
			lastErr = err
			continue
		}

		doc.Find(a.cfg.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if href == "" {
				return
			}
			href = absoluteURL(a.cfg.BaseURL, href)
			if seen[href] {
				return
			}
			if matchesBrand(href, brand) || matchesBrand(sel.Text(), brand) {
				seen[href] = true
				candidates = append(candidates, href)
			}
		})
	}

	return candidates, lastErr
}

// confirmCandidate fetches the product detail page and builds a listing
// from it. Candidates whose title lacks the brand token or whose confirmed
// price is not positive are dropped.
func (a *CategoryAdapter) confirmCandidate(ctx context.Context, href, brand string) (models.ProductListing, bool) {
	page, err := a.fetcher.Fetch(ctx, href)
	if err != nil {
		a.logger.Warn("detail page fetch failed", "url", href, "error", err)
		return models.ProductListing{}, false
	}

	doc, err := parseDocument(page.Body)
	if err != nil {
		a.logger.Warn("detail page unparsable", "url", href, "error", err)
		return models.ProductListing{}, false
	}

	name := firstText(doc.Selection, a.cfg.TitleSelector)
	if name == "" || !matchesBrand(name, brand) {
		return models.ProductListing{}, false
	}

	price, err := a.detailPrice(doc, href)
	if err != nil {
		a.logger.Warn("price extraction failed", "url", href, "error", err)
		return models.ProductListing{}, false
	}

	listing := models.ProductListing{
		Name:      name,
		Price:     price,
		URL:       href,
		Available: a.cfg.Availability.Classify(doc.Selection, page.Body),
		Brand:     brand,
	}
	if err := listing.Validate(); err != nil {
		a.logger.Warn("listing discarded", "url", href, "error", err)
		return models.ProductListing{}, false
	}
	return listing, true
}

// detailPrice prefers the structured price attribute and falls back to the
// visible price element.
func (a *CategoryAdapter) detailPrice(doc *goquery.Document, pageURL string) (float64, error) {
	if attr, ok := doc.Find(a.cfg.PriceAttrSelector).First().Attr("content"); ok {
		return normalize.ParseAmount(attr)
	}
	text := firstText(doc.Selection, a.cfg.PriceTextSelector)
	if text == "" {
		return 0, &ParseError{
			Competitor: a.cfg.Competitor,
			URL:        pageURL,
			Selector:   a.cfg.PriceTextSelector,
		}
	}
	return normalize.ParseAmount(text)
}
