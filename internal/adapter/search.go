package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/kosmetik-price-monitor/internal/fetch"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
	"github.com/maltedev/kosmetik-price-monitor/internal/normalize"
)

// SearchConfig parameterizes the site-search strategy: one results page per
// brand query, with name, price and availability read from the result card
// itself. This trades price accuracy for one request per brand instead of
// one per product.
type SearchConfig struct {
	Competitor string
	BaseURL    string
	// SearchPathFormat builds the search URL path; every %[1]s is replaced
	// with the escaped brand term.
	SearchPathFormat string
	CardSelector     string
	TitleSelector    string
	PriceSelector    string
	Availability     normalize.AvailabilityRule
	// AlwaysAvailable is set for sources whose listing markup carries no
	// reliable out-of-stock signal. Accepted limitation of those sites.
	AlwaysAvailable bool
}

// SearchAdapter extracts listings from a search-results page.
type SearchAdapter struct {
	cfg     SearchConfig
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewSearchAdapter(cfg SearchConfig, fetcher fetch.Fetcher, logger *slog.Logger) *SearchAdapter {
	return &SearchAdapter{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "adapter", "competitor", cfg.Competitor),
	}
}

func (a *SearchAdapter) Competitor() string { return a.cfg.Competitor }

func (a *SearchAdapter) Extract(ctx context.Context, brand string) ([]models.ProductListing, error) {
	searchURL := a.cfg.BaseURL + fmt.Sprintf(a.cfg.SearchPathFormat, url.QueryEscape(brand))

	page, err := a.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(page.Body)
	if err != nil {
		return nil, err
	}

	var listings []models.ProductListing
	doc.Find(a.cfg.CardSelector).Each(func(_ int, card *goquery.Selection) {
		listing, ok := a.extractCard(card, brand, searchURL)
		if ok {
			listings = append(listings, listing)
		}
	})
	return listings, nil
}

func (a *SearchAdapter) extractCard(card *goquery.Selection, brand, searchURL string) (models.ProductListing, bool) {
	titleSel := card.Find(a.cfg.TitleSelector).First()
	name := trimmedText(titleSel)
	if name == "" || !matchesBrand(name, brand) {
		return models.ProductListing{}, false
	}

	priceText := firstText(card, a.cfg.PriceSelector)
	if priceText == "" {
		return models.ProductListing{}, false
	}
	price, err := normalize.ParseAmount(priceText)
	if err != nil {
		a.logger.Warn("card price unparsable", "name", name, "text", priceText)
		return models.ProductListing{}, false
	}

	href := cardLink(titleSel)
	if href == "" {
		href = searchURL
	} else {
		href = absoluteURL(a.cfg.BaseURL, href)
	}

	available := true
	if !a.cfg.AlwaysAvailable {
		available = a.cfg.Availability.Classify(card, card.Text())
	}

	listing := models.ProductListing{
		Name:      name,
		Price:     price,
		URL:       href,
		Available: available,
		Brand:     brand,
	}
	if err := listing.Validate(); err != nil {
		a.logger.Warn("listing discarded", "name", name, "error", err)
		return models.ProductListing{}, false
	}
	return listing, true
}

// cardLink reads the href from the title element itself or the nearest
// anchor inside it.
func cardLink(titleSel *goquery.Selection) string {
	if href, ok := titleSel.Attr("href"); ok {
		return href
	}
	href, _ := titleSel.Find("a").First().Attr("href")
	return href
}
