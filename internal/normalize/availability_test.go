package normalize

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragment(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Selection
}

func TestClassifyAvailability(t *testing.T) {
	rule := AvailabilityRule{
		MarkerSelector: ".not-available",
		Phrases:        []string{"nicht auf Lager", "ausverkauft"},
	}

	tests := []struct {
		name      string
		html      string
		text      string
		available bool
	}{
		{
			name:      "No negative signal defaults to available",
			html:      `<div class="product"><span class="price">49,90 €</span></div>`,
			text:      "Produkt 49,90 €",
			available: true,
		},
		{
			name:      "Marker element present",
			html:      `<div class="product"><div class="not-available">Lieferzeit unbekannt</div></div>`,
			text:      "Produkt",
			available: false,
		},
		{
			name:      "Out-of-stock phrase in text",
			html:      `<div class="product"></div>`,
			text:      "Dieser Artikel ist derzeit nicht auf Lager.",
			available: false,
		},
		{
			name:      "Phrase match is case-insensitive",
			html:      `<div class="product"></div>`,
			text:      "AUSVERKAUFT",
			available: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.Classify(fragment(t, tt.html), tt.text)
			assert.Equal(t, tt.available, got)
		})
	}
}

func TestClassifyWithoutMarkerOrFragment(t *testing.T) {
	rule := AvailabilityRule{Phrases: []string{"sold out"}}

	assert.True(t, rule.Classify(nil, "in stock, ships today"))
	assert.False(t, rule.Classify(nil, "currently SOLD OUT"))
}
