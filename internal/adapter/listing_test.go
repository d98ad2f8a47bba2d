package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/maltedev/kosmetik-price-monitor/internal/config"
	"github.com/maltedev/kosmetik-price-monitor/internal/normalize"
)

func listingTestConfig() ListingPageConfig {
	return ListingPageConfig{
		Competitor:    "AUDERMAESTHETIC",
		BaseURL:       "https://taxonomy.example",
		PagePath:      "/collections/bio-revitalisierung",
		CardSelector:  ".product-card, [class*='product']",
		TitleSelector: "h3 a",
		PriceSelector: "[class*='price']",
		Availability: normalize.AvailabilityRule{
			Phrases: []string{"ausverkauft"},
		},
		ListingNote: "exkl. MwSt.",
	}
}

func TestListingPageAdapterExtract(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://taxonomy.example/collections/bio-revitalisierung": `<html><body>
			<div class="product-card">
				<h3><a href="/products/jalupro-classic">Jalupro Classic</a></h3>
				<span class="price">42,00 €</span>
			</div>
			<div class="product-card product">
				<h3><a href="/products/jalupro-classic">Jalupro Classic</a></h3>
				<span class="price">42,00 €</span>
			</div>
			<div class="product-card">
				<h3><a href="/products/hydro-mask">Hydropeptide Mask</a></h3>
				<span class="price">35,50 €</span>
			</div>
		</body></html>`,
	}}

	adapter := NewListingPageAdapter(listingTestConfig(), fetcher, testLogger())
	listings, err := adapter.Extract(context.Background(), "Jalupro")

	require.NoError(t, err)
	// The broad card selector matches the same product twice; the name
	// dedupe keeps one.
	require.Len(t, listings, 1)
	assert.Equal(t, "Jalupro Classic", listings[0].Name)
	assert.InDelta(t, 42.00, listings[0].Price, 0.001)
	assert.Equal(t, "https://taxonomy.example/products/jalupro-classic", listings[0].URL)
	assert.Equal(t, "exkl. MwSt.", listings[0].Note)
}

func TestListingPageAdapterOtherBrandOnSamePage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://taxonomy.example/collections/bio-revitalisierung": `<html><body>
			<div class="product-card">
				<h3><a href="/products/hydro-mask">Hydropeptide Mask</a></h3>
				<span class="price">35,50 €</span>
			</div>
		</body></html>`,
	}}

	adapter := NewListingPageAdapter(listingTestConfig(), fetcher, testLogger())

	listings, err := adapter.Extract(context.Background(), "Hydropeptide")
	require.NoError(t, err)
	require.Len(t, listings, 1)

	listings, err = adapter.Extract(context.Background(), "Jalupro")
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestNoteAdapter(t *testing.T) {
	adapter := NewNoteAdapter("Jollifill", "Requires customer-status verification.")

	assert.Equal(t, "Jollifill", adapter.Competitor())
	assert.Equal(t, "Requires customer-status verification.", adapter.Note())

	listings, err := adapter.Extract(context.Background(), "Jalupro")
	assert.NoError(t, err)
	assert.Empty(t, listings)
}

func TestBuildAssignsStrategyPerCompetitor(t *testing.T) {
	cfg := &config.Config{
		Competitors: []config.Competitor{
			{Name: "MorySkin", BaseURL: "https://moryskin.example"},
			{Name: "Hyaloo", BaseURL: "https://hyaloo.example"},
			{Name: "AUDERMAESTHETIC", BaseURL: "https://auderm.example"},
			{Name: "Jollifill", BaseURL: "https://jolifill.example"},
			{Name: "hyamarkt", BaseURL: "https://hyamarkt.example"},
			{Name: "FARMA MEDICAL", BaseURL: "https://farma.example"},
		},
	}

	adapters := Build(cfg, &fakeFetcher{}, testLogger())
	require.Len(t, adapters, 6)

	// Order follows the competitor table.
	for i, c := range cfg.Competitors {
		assert.Equal(t, c.Name, adapters[i].Competitor())
	}

	assert.IsType(t, &CategoryAdapter{}, adapters[0])
	assert.IsType(t, &SearchAdapter{}, adapters[1])
	assert.IsType(t, &ListingPageAdapter{}, adapters[2])
	assert.IsType(t, &NoteAdapter{}, adapters[3])
	assert.IsType(t, &SearchAdapter{}, adapters[4])
	assert.IsType(t, &NoteAdapter{}, adapters[5])
}
