package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/kosmetik-price-monitor/internal/aggregate"
	"github.com/maltedev/kosmetik-price-monitor/internal/models"
	"github.com/maltedev/kosmetik-price-monitor/internal/observability"
	"github.com/maltedev/kosmetik-price-monitor/internal/store"
)

// ErrSweepInProgress is returned when a sweep is requested while another
// one is still running. Sweeps are never queued.
var ErrSweepInProgress = errors.New("a sweep is already in progress")

// Publisher announces completed sweeps. Satisfied by events.Publisher.
type Publisher interface {
	PublishSnapshotUpdated(ctx context.Context, snapshot *models.Snapshot) error
}

// Service is the top-level entry point for sweeps and the only surface the
// chat/reporting layer calls into.
type Service struct {
	aggregator  *aggregate.Aggregator
	store       store.Store
	publisher   Publisher
	competitors []string
	deadline    time.Duration
	logger      *slog.Logger

	sweeping atomic.Bool
}

func NewService(
	aggregator *aggregate.Aggregator,
	st store.Store,
	publisher Publisher,
	competitors []string,
	deadline time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		aggregator:  aggregator,
		store:       st,
		publisher:   publisher,
		competitors: competitors,
		deadline:    deadline,
		logger:      logger.With("component", "orchestrator"),
	}
}

// TriggerScrape runs one full sweep and persists the result. Only one
// sweep may run at a time; a second request is rejected with
// ErrSweepInProgress. Individual source failures never fail the sweep;
// only a failed store write does.
func (s *Service) TriggerScrape(ctx context.Context) (*models.Snapshot, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.sweeping.Store(false)

	sweepID := uuid.New().String()
	started := time.Now()
	s.logger.Info("sweep started", "sweep_id", sweepID)

	sweepCtx := ctx
	if s.deadline > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	snapshot := s.aggregator.RunSweep(sweepCtx)

	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.Error("snapshot save failed", "sweep_id", sweepID, "error", err)
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	observability.SweepsTotal.Inc()
	observability.SweepDuration.Observe(time.Since(started).Seconds())

	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotUpdated(ctx, snapshot); err != nil {
			s.logger.Warn("snapshot event publish failed", "sweep_id", sweepID, "error", err)
		}
	}

	s.logger.Info("sweep completed",
		"sweep_id", sweepID,
		"listings", snapshot.TotalListings(),
		"duration", time.Since(started))
	return snapshot, nil
}

// StartDeferred schedules the first sweep a few seconds after startup,
// fire-and-forget, so the rest of the process can finish initializing.
func (s *Service) StartDeferred(ctx context.Context, delay time.Duration) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if _, err := s.TriggerScrape(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) {
			s.logger.Error("initial sweep failed", "error", err)
		}
	}()
}

// GetSnapshot returns the last persisted snapshot.
func (s *Service) GetSnapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.store.Load(ctx)
}

// GetBrandView renders the per-competitor breakdown for one brand.
func (s *Service) GetBrandView(ctx context.Context, brand string) (string, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return renderBrandView(snapshot, brand, s.competitors), nil
}

// CompetitorHealth is one line of the status summary.
type CompetitorHealth struct {
	Name     string `json:"name"`
	Listings int    `json:"listings"`
	Note     string `json:"note,omitempty"`
	State    string `json:"state"` // "ok", "note" or "no_data"
}

// Status summarizes the last sweep for operators.
type Status struct {
	LastUpdated   string             `json:"last_updated"`
	TotalListings int                `json:"total_listings"`
	SweepRunning  bool               `json:"sweep_running"`
	Competitors   []CompetitorHealth `json:"competitors"`
}

// GetStatus reports listing counts and per-competitor health from the last
// persisted snapshot.
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		TotalListings: snapshot.TotalListings(),
		SweepRunning:  s.sweeping.Load(),
	}
	if !snapshot.TakenAt.IsZero() {
		status.LastUpdated = snapshot.TakenAt.UTC().Format(models.TimestampLayout)
	}

	for _, name := range s.competitors {
		entry := snapshot.Competitors[name]
		health := CompetitorHealth{Name: name, Listings: entry.ListingCount()}
		switch {
		case entry.Note != "":
			health.State = "note"
			health.Note = entry.Note
		case health.Listings > 0:
			health.State = "ok"
		default:
			health.State = "no_data"
		}
		status.Competitors = append(status.Competitors, health)
	}
	return status, nil
}
