package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maltedev/kosmetik-price-monitor/internal/adapter"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
	"github.com/maltedev/kosmetik-price-monitor/internal/observability"
)

// Aggregator drives every tracked (competitor, brand) pair through its
// source adapter and merges the results into one snapshot.
type Aggregator struct {
	adapters      []adapter.SourceAdapter
	brands        []string
	maxConcurrent int
	logger        *slog.Logger
}

func New(adapters []adapter.SourceAdapter, brands []string, maxConcurrent int, logger *slog.Logger) *Aggregator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Aggregator{
		adapters:      adapters,
		brands:        brands,
		maxConcurrent: maxConcurrent,
		logger:        logger.With("component", "aggregator"),
	}
}

type task struct {
	adapterIdx int
	brandIdx   int
}

// RunSweep extracts listings for every tracked competitor and brand.
// Extraction runs on a bounded worker pool; concurrency reorders work
// across pairs but never within one adapter call, so each brand's listing
// order stays deterministic. Adapter failures are absorbed: the failing
// pair simply contributes no listings and the sweep continues. After a
// completed sweep every tracked competitor has an entry: listings, a
// note, or an empty entry.
func (g *Aggregator) RunSweep(ctx context.Context) *models.Snapshot {
	results := make([][][]models.ProductListing, len(g.adapters))
	for i := range results {
		results[i] = make([][]models.ProductListing, len(g.brands))
	}

	tasks := make(chan task)
	var wg sync.WaitGroup
	for w := 0; w < g.maxConcurrent; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				g.runTask(ctx, t, results)
			}
		}()
	}

	for i, a := range g.adapters {
		if _, isNote := a.(adapter.NoteSource); isNote {
			continue
		}
		for j := range g.brands {
			select {
			case tasks <- task{adapterIdx: i, brandIdx: j}:
			case <-ctx.Done():
				// Deadline expired: unfinished pairs contribute no data
				// this sweep. Completed results are kept.
			}
			if ctx.Err() != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(tasks)
	wg.Wait()

	snapshot := models.NewSnapshot()
	for i, a := range g.adapters {
		entry := models.CompetitorEntry{}
		if note, isNote := a.(adapter.NoteSource); isNote {
			entry = models.NoteEntry(note.Note())
		} else {
			for j, brand := range g.brands {
				entry.AddBrand(brand, results[i][j])
			}
		}
		observability.ListingsExtracted.WithLabelValues(a.Competitor()).Add(float64(entry.ListingCount()))
		snapshot.Competitors[a.Competitor()] = entry
	}
	snapshot.TakenAt = time.Now().UTC()

	g.logger.Info("sweep merged",
		"competitors", len(g.adapters),
		"brands", len(g.brands),
		"listings", snapshot.TotalListings())
	return snapshot
}

func (g *Aggregator) runTask(ctx context.Context, t task, results [][][]models.ProductListing) {
	a := g.adapters[t.adapterIdx]
	brand := g.brands[t.brandIdx]

	if ctx.Err() != nil {
		return
	}

	listings, err := a.Extract(ctx, brand)
	if err != nil {
		// Infrastructure failure for this pair only. Downstream it is
		// indistinguishable from "brand not carried".
		g.logger.Warn("extraction produced no data",
			"competitor", a.Competitor(), "brand", brand, "error", err)
		return
	}
	results[t.adapterIdx][t.brandIdx] = listings
}
