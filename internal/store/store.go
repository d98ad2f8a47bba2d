package store

import (
	"context"

	"github.com/maltedev/kosmetik-price-monitor/internal/models"
)

// Store persists the last aggregated snapshot. Save atomically replaces
// the previous state; concurrent readers never observe a half-written
// snapshot. Load on a never-run store returns an empty snapshot with a
// zero TakenAt.
type Store interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snapshot *models.Snapshot) error
}
