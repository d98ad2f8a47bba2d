package adapter

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/kosmetik-price-monitor/internal/fetch"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
	"github.com/maltedev/kosmetik-price-monitor/internal/normalize"
)

// ListingPageConfig parameterizes the single-taxonomy-page strategy. The
// page's markup is inconsistent across products, so the card selector is
// deliberately broad and the first price-like element inside a card wins.
type ListingPageConfig struct {
	Competitor    string
	BaseURL       string
	PagePath      string
	CardSelector  string
	TitleSelector string
	PriceSelector string
	Availability  normalize.AvailabilityRule
	// ListingNote is attached to every extracted listing, e.g. when the
	// displayed price excludes tax while other sources include it.
	ListingNote string
}

// ListingPageAdapter extracts listings from one fixed taxonomy page.
type ListingPageAdapter struct {
	cfg     ListingPageConfig
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

func NewListingPageAdapter(cfg ListingPageConfig, fetcher fetch.Fetcher, logger *slog.Logger) *ListingPageAdapter {
	return &ListingPageAdapter{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "adapter", "competitor", cfg.Competitor),
	}
}

func (a *ListingPageAdapter) Competitor() string { return a.cfg.Competitor }

func (a *ListingPageAdapter) Extract(ctx context.Context, brand string) ([]models.ProductListing, error) {
	pageURL := a.cfg.BaseURL + a.cfg.PagePath

	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(page.Body)
	if err != nil {
		return nil, err
	}

	var listings []models.ProductListing
	seen := make(map[string]bool)

	doc.Find(a.cfg.CardSelector).Each(func(_ int, card *goquery.Selection) {
		titleSel := card.Find(a.cfg.TitleSelector).First()
		name := trimmedText(titleSel)
		if name == "" || !matchesBrand(name, brand) || seen[name] {
			return
		}

		priceText := firstText(card, a.cfg.PriceSelector)
		price, err := normalize.ParseAmount(priceText)
		if err != nil {
			a.logger.Warn("card price unparsable", "name", name, "text", priceText)
			return
		}

		href := cardLink(titleSel)
		if href != "" {
			href = absoluteURL(a.cfg.BaseURL, href)
		} else {
			href = pageURL
		}

		listing := models.ProductListing{
			Name:      name,
			Price:     price,
			URL:       href,
			Available: a.cfg.Availability.Classify(card, card.Text()),
			Brand:     brand,
			Note:      a.cfg.ListingNote,
		}
		if err := listing.Validate(); err != nil {
			a.logger.Warn("listing discarded", "name", name, "error", err)
			return
		}
		seen[name] = true
		listings = append(listings, listing)
	})

	return listings, nil
}
