package adapter

import (
	"context"

	"github.com/maltedev/kosmetik-price-monitor/internal/models"
)

// NoteAdapter represents a source with no trackable public data. It never
// fetches anything; the fixed note is its legitimate steady-state result,
// not a stub awaiting completion.
type NoteAdapter struct {
	competitor string
	note       string
}

func NewNoteAdapter(competitor, note string) *NoteAdapter {
	return &NoteAdapter{competitor: competitor, note: note}
}

func (a *NoteAdapter) Competitor() string { return a.competitor }

func (a *NoteAdapter) Note() string { return a.note }

func (a *NoteAdapter) Extract(context.Context, string) ([]models.ProductListing, error) {
	return nil, nil
}
