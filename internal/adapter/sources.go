package adapter

import (
	"log/slog"

	"github.com/maltedev/kosmetik-price-monitor/internal/config"
	"github.com/maltedev/kosmetik-price-monitor/internal/fetch"
	"github.com/maltedev/kosmetik-price-monitor/internal/normalize"
)

// Strategy configuration per competitor. Selector lists and out-of-stock
// lexicons are data, not logic, so synthetic pages can exercise each
// strategy in tests.

func moryskinConfig(c config.Competitor) CategoryConfig {
	return CategoryConfig{
		Competitor: c.Name,
		BaseURL:    c.BaseURL,
		CategoryPaths: []string{
			"/produkt-kategorie/dermal-filler/jalupro/",
			"/produkt-kategorie/mesotherapie/",
		},
		LinkSelector:      "a.product--image, a.product--title",
		TitleSelector:     "h1.product--title, h1",
		PriceAttrSelector: "meta[itemprop='price']",
		PriceTextSelector: "span.product--price",
		Availability: normalize.AvailabilityRule{
			MarkerSelector: ".product--buybox .is--hidden, .product--not-available",
			Phrases:        []string{"nicht zur Verfügung", "ausverkauft"},
		},
	}
}

func hyalooConfig(c config.Competitor) SearchConfig {
	return SearchConfig{
		Competitor:       c.Name,
		BaseURL:          c.BaseURL,
		SearchPathFormat: "/de_DE/searchquery/%[1]s/1/phot/5?url=%[1]s",
		CardSelector:     ".product--box, .product-card, .product--info",
		TitleSelector:    ".product--title a, .product--title, a.product--title",
		PriceSelector:    ".product--price, .price--default",
		Availability: normalize.AvailabilityRule{
			Phrases: []string{"nicht auf Lager", "ausverkauft"},
		},
	}
}

func audermConfig(c config.Competitor) ListingPageConfig {
	return ListingPageConfig{
		Competitor:    c.Name,
		BaseURL:       c.BaseURL,
		PagePath:      "/collections/bio-revitalisierung",
		CardSelector:  ".product-card, .grid-product, [class*='product']",
		TitleSelector: "a[href*='products'], .product-title, h3 a, h2 a",
		PriceSelector: "[class*='price'], .money",
		Availability: normalize.AvailabilityRule{
			Phrases: []string{"ausverkauft", "sold out"},
		},
		// Displayed prices exclude VAT on this site; the other sources
		// include it.
		ListingNote: "exkl. MwSt.",
	}
}

func hyamarktConfig(c config.Competitor) SearchConfig {
	return SearchConfig{
		Competitor:       c.Name,
		BaseURL:          c.BaseURL,
		SearchPathFormat: "/?s=%s",
		CardSelector:     ".product, .wc-block-grid__product, li.product",
		TitleSelector:    "h2 a, .woocommerce-loop-product__title a, a.woocommerce-LoopProduct-link",
		PriceSelector:    ".price .amount, .woocommerce-Price-amount",
		// The WooCommerce listing markup carries no usable stock signal.
		AlwaysAvailable: true,
	}
}

const (
	jollifillNote = "Requires customer-status verification. Products are not publicly listed."
	farmaNote     = "Site unreachable or carries no tracked brands."
)

// Build constructs one adapter per tracked competitor, in table order.
// Competitors without a dedicated strategy become note-only sources.
func Build(cfg *config.Config, fetcher fetch.Fetcher, logger *slog.Logger) []SourceAdapter {
	adapters := make([]SourceAdapter, 0, len(cfg.Competitors))
	for _, c := range cfg.Competitors {
		switch c.Name {
		case "MorySkin":
			adapters = append(adapters, NewCategoryAdapter(moryskinConfig(c), fetcher, logger))
		case "Hyaloo":
			adapters = append(adapters, NewSearchAdapter(hyalooConfig(c), fetcher, logger))
		case "AUDERMAESTHETIC":
			adapters = append(adapters, NewListingPageAdapter(audermConfig(c), fetcher, logger))
		case "hyamarkt":
			adapters = append(adapters, NewSearchAdapter(hyamarktConfig(c), fetcher, logger))
		case "Jollifill":
			adapters = append(adapters, NewNoteAdapter(c.Name, jollifillNote))
		default:
			adapters = append(adapters, NewNoteAdapter(c.Name, farmaNote))
		}
	}
	return adapters
}
