package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/maltedev/kosmetik-price-monitor/internal/adapter"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubAdapter serves canned listings per brand.
type stubAdapter struct {
	name     string
	listings map[string][]models.ProductListing
	err      error
}

func (s *stubAdapter) Competitor() string { return s.name }

func (s *stubAdapter) Extract(ctx context.Context, brand string) ([]models.ProductListing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.listings[brand], nil
}

// stubNoteAdapter mimics a note-only source.
type stubNoteAdapter struct {
	name string
	note string
}

func (s *stubNoteAdapter) Competitor() string { return s.name }
func (s *stubNoteAdapter) Note() string       { return s.note }
func (s *stubNoteAdapter) Extract(context.Context, string) ([]models.ProductListing, error) {
	return nil, nil
}

func listing(name, brand string, price float64) models.ProductListing {
	return models.ProductListing{Name: name, Brand: brand, Price: price, URL: "https://example.de/" + name, Available: true}
}

func TestRunSweepMergesAllSources(t *testing.T) {
	adapters := []adapter.SourceAdapter{
		&stubAdapter{name: "ShopA", listings: map[string][]models.ProductListing{
			"Jalupro": {listing("a1", "Jalupro", 49.90), listing("a2", "Jalupro", 89.00)},
			"DSD":     {listing("a3", "DSD", 120.00)},
		}},
		&stubAdapter{name: "ShopB", listings: map[string][]models.ProductListing{
			"Jalupro": {listing("b1", "Jalupro", 52.00)},
		}},
		&stubNoteAdapter{name: "ShopC", note: "verification required"},
	}

	agg := New(adapters, []string{"Jalupro", "DSD"}, 4, testLogger())
	snapshot := agg.RunSweep(context.Background())

	require.Len(t, snapshot.Competitors, 3)
	assert.False(t, snapshot.TakenAt.IsZero())
	assert.Equal(t, 4, snapshot.TotalListings())

	shopA := snapshot.Competitors["ShopA"]
	assert.Len(t, shopA.Brands["Jalupro"], 2)
	assert.Equal(t, "a1", shopA.Brands["Jalupro"][0].Name) // per-adapter order preserved
	assert.Len(t, shopA.Brands["DSD"], 1)

	shopB := snapshot.Competitors["ShopB"]
	assert.Len(t, shopB.Brands["Jalupro"], 1)
	assert.NotContains(t, shopB.Brands, "DSD") // empty results leave no brand key

	shopC := snapshot.Competitors["ShopC"]
	assert.Equal(t, "verification required", shopC.Note)
	assert.Empty(t, shopC.Brands)
}

func TestRunSweepIsolatesFailingSource(t *testing.T) {
	adapters := []adapter.SourceAdapter{
		&stubAdapter{name: "Broken", err: errors.New("connection refused")},
		&stubAdapter{name: "Healthy", listings: map[string][]models.ProductListing{
			"Jalupro": {listing("h1", "Jalupro", 49.90)},
		}},
	}

	agg := New(adapters, []string{"Jalupro"}, 2, testLogger())
	snapshot := agg.RunSweep(context.Background())

	// The failing source still gets an entry, just an empty one.
	require.Contains(t, snapshot.Competitors, "Broken")
	assert.True(t, snapshot.Competitors["Broken"].IsEmpty())

	assert.Equal(t, 1, snapshot.Competitors["Healthy"].ListingCount())
}

func TestRunSweepEveryCompetitorGetsAnEntry(t *testing.T) {
	adapters := []adapter.SourceAdapter{
		&stubAdapter{name: "Empty", listings: nil},
		&stubNoteAdapter{name: "NoteOnly", note: "offline"},
		&stubAdapter{name: "Failing", err: errors.New("boom")},
	}

	agg := New(adapters, []string{"Jalupro", "DSD"}, 1, testLogger())
	snapshot := agg.RunSweep(context.Background())

	assert.Len(t, snapshot.Competitors, 3)
	for _, name := range []string{"Empty", "NoteOnly", "Failing"} {
		assert.Contains(t, snapshot.Competitors, name)
	}
}

func TestRunSweepStableAcrossRuns(t *testing.T) {
	adapters := []adapter.SourceAdapter{
		&stubAdapter{name: "ShopA", listings: map[string][]models.ProductListing{
			"Jalupro": {listing("a1", "Jalupro", 49.90), listing("a2", "Jalupro", 89.00)},
		}},
		&stubAdapter{name: "ShopB", listings: map[string][]models.ProductListing{
			"Jalupro": {listing("b1", "Jalupro", 52.00)},
		}},
	}

	agg := New(adapters, []string{"Jalupro"}, 8, testLogger())

	first := agg.RunSweep(context.Background())
	second := agg.RunSweep(context.Background())

	assert.Equal(t, first.Competitors, second.Competitors)
}

func TestRunSweepCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapters := []adapter.SourceAdapter{
		&stubAdapter{name: "ShopA", listings: map[string][]models.ProductListing{
			"Jalupro": {listing("a1", "Jalupro", 49.90)},
		}},
	}

	agg := New(adapters, []string{"Jalupro"}, 2, testLogger())
	snapshot := agg.RunSweep(ctx)

	// Nothing was extracted, but the snapshot is still complete.
	require.Contains(t, snapshot.Competitors, "ShopA")
	assert.Equal(t, 0, snapshot.TotalListings())
}
