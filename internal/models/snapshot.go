package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the wire format of the persisted last_updated field.
const TimestampLayout = "2006-01-02 15:04 UTC"

var (
	ErrNonPositivePrice = errors.New("listing has non-positive price")
	ErrEmptyName        = errors.New("listing has empty name")
)

// ProductListing is one product observation extracted during a sweep.
// Listings carry no persistent identity; they are recomputed on every sweep.
type ProductListing struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	URL       string  `json:"url"`
	Available bool    `json:"available"`
	Brand     string  `json:"brand"`
	Note      string  `json:"note,omitempty"`
}

// Validate reports whether the listing is semantically usable. Invalid
// listings are discarded at the adapter boundary, never stored.
func (l ProductListing) Validate() error {
	if l.Name == "" {
		return ErrEmptyName
	}
	if l.Price <= 0 {
		return ErrNonPositivePrice
	}
	return nil
}

// CompetitorEntry holds either per-brand listings or a single informational
// note ("no trackable data from this source"). The two are mutually
// exclusive.
type CompetitorEntry struct {
	Note   string
	Brands map[string][]ProductListing
}

// NoteEntry builds a note-only entry.
func NoteEntry(note string) CompetitorEntry {
	return CompetitorEntry{Note: note}
}

// AddBrand records the listings extracted for one brand. Empty results are
// not recorded; absence of a brand key means "nothing found".
func (e *CompetitorEntry) AddBrand(brand string, listings []ProductListing) {
	if len(listings) == 0 {
		return
	}
	if e.Brands == nil {
		e.Brands = make(map[string][]ProductListing)
	}
	e.Brands[brand] = listings
}

// ListingCount returns the total number of listings across all brands.
func (e CompetitorEntry) ListingCount() int {
	n := 0
	for _, ls := range e.Brands {
		n += len(ls)
	}
	return n
}

// IsEmpty reports whether the entry carries neither listings nor a note.
func (e CompetitorEntry) IsEmpty() bool {
	return e.Note == "" && len(e.Brands) == 0
}

// MarshalJSON serializes the entry as either {"_note": "..."} or
// {brand: [listing...]}.
func (e CompetitorEntry) MarshalJSON() ([]byte, error) {
	if e.Note != "" {
		return json.Marshal(map[string]string{"_note": e.Note})
	}
	if e.Brands == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Brands)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (e *CompetitorEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if note, ok := raw["_note"]; ok {
		return json.Unmarshal(note, &e.Note)
	}
	e.Brands = nil
	for brand, msg := range raw {
		var listings []ProductListing
		if err := json.Unmarshal(msg, &listings); err != nil {
			return fmt.Errorf("competitor entry brand %q: %w", brand, err)
		}
		if e.Brands == nil {
			e.Brands = make(map[string][]ProductListing)
		}
		e.Brands[brand] = listings
	}
	return nil
}

// Snapshot is the result of one full sweep. After a completed sweep every
// tracked competitor has an entry, even if empty or note-only.
type Snapshot struct {
	TakenAt     time.Time
	Competitors map[string]CompetitorEntry
}

// NewSnapshot returns an empty snapshot with an initialized competitor map.
func NewSnapshot() *Snapshot {
	return &Snapshot{Competitors: make(map[string]CompetitorEntry)}
}

// TotalListings counts listings across all competitors.
func (s *Snapshot) TotalListings() int {
	n := 0
	for _, entry := range s.Competitors {
		n += entry.ListingCount()
	}
	return n
}

// Document is the persisted snapshot shape shared with the chat layer.
type Document struct {
	LastUpdated *string                    `json:"last_updated"`
	Prices      map[string]CompetitorEntry `json:"prices"`
}

// ToDocument converts a snapshot to its persisted form.
func (s *Snapshot) ToDocument() Document {
	doc := Document{Prices: s.Competitors}
	if doc.Prices == nil {
		doc.Prices = map[string]CompetitorEntry{}
	}
	if !s.TakenAt.IsZero() {
		ts := s.TakenAt.UTC().Format(TimestampLayout)
		doc.LastUpdated = &ts
	}
	return doc
}

// FromDocument converts a persisted document back to a snapshot. A missing
// or unparsable last_updated yields a zero TakenAt ("never run").
func FromDocument(doc Document) (*Snapshot, error) {
	s := NewSnapshot()
	if doc.Prices != nil {
		s.Competitors = doc.Prices
	}
	if doc.LastUpdated != nil && *doc.LastUpdated != "" {
		t, err := time.Parse(TimestampLayout, *doc.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("invalid last_updated %q: %w", *doc.LastUpdated, err)
		}
		s.TakenAt = t
	}
	return s, nil
}
