package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/maltedev/kosmetik-price-monitor/internal/normalize"
)

func searchTestConfig() SearchConfig {
	return SearchConfig{
		Competitor:       "Hyaloo",
		BaseURL:          "https://search.example",
		SearchPathFormat: "/suche/%[1]s",
		CardSelector:     ".product--box",
		TitleSelector:    ".product--title a",
		PriceSelector:    ".product--price",
		Availability: normalize.AvailabilityRule{
			Phrases: []string{"nicht auf Lager"},
		},
	}
}

func TestSearchAdapterExtract(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://search.example/suche/Jalupro": `<html><body>
			<div class="product--box">
				<div class="product--title"><a href="/p/jalupro-classic">Jalupro Classic</a></div>
				<div class="product--price">49,90 €</div>
			</div>
			<div class="product--box">
				<div class="product--title"><a href="/p/jalupro-hmw">Jalupro HMW</a></div>
				<div class="product--price">89,00 €</div>
				<div class="delivery">Derzeit nicht auf Lager</div>
			</div>
			<div class="product--box">
				<div class="product--title"><a href="/p/profhilo">Profhilo H+L</a></div>
				<div class="product--price">119,00 €</div>
			</div>
			<div class="product--box">
				<div class="product--title"><a href="/p/jalupro-mystery">Jalupro Mystery</a></div>
				<div class="product--price">Preis auf Anfrage</div>
			</div>
		</body></html>`,
	}}

	adapter := NewSearchAdapter(searchTestConfig(), fetcher, testLogger())
	listings, err := adapter.Extract(context.Background(), "Jalupro")

	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Jalupro Classic", listings[0].Name)
	assert.InDelta(t, 49.90, listings[0].Price, 0.001)
	assert.Equal(t, "https://search.example/p/jalupro-classic", listings[0].URL)
	assert.True(t, listings[0].Available)

	assert.Equal(t, "Jalupro HMW", listings[1].Name)
	assert.False(t, listings[1].Available)
}

func TestSearchAdapterEscapesBrandTerm(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://search.example/suche/MD%3Aceuticals": `<html><body></body></html>`,
	}}

	adapter := NewSearchAdapter(searchTestConfig(), fetcher, testLogger())
	listings, err := adapter.Extract(context.Background(), "MD:ceuticals")

	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Equal(t, []string{"https://search.example/suche/MD%3Aceuticals"}, fetcher.requests)
}

func TestSearchAdapterAlwaysAvailable(t *testing.T) {
	cfg := searchTestConfig()
	cfg.Competitor = "hyamarkt"
	cfg.AlwaysAvailable = true

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://search.example/suche/Jalupro": `<html><body>
			<div class="product--box">
				<div class="product--title"><a href="/p/jalupro">Jalupro Classic</a></div>
				<div class="product--price">59,00 €</div>
				<div class="delivery">nicht auf Lager</div>
			</div>
		</body></html>`,
	}}

	adapter := NewSearchAdapter(cfg, fetcher, testLogger())
	listings, err := adapter.Extract(context.Background(), "Jalupro")

	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.True(t, listings[0].Available) // stock signal is ignored for this source
}

func TestSearchAdapterPropagatesFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{}}

	adapter := NewSearchAdapter(searchTestConfig(), fetcher, testLogger())
	_, err := adapter.Extract(context.Background(), "Jalupro")

	assert.Error(t, err)
}
