// Package dataset holds the in-memory flotation dataset and everything that
// produces a view of it: loading from sources, filtering, sorting and paging.
package dataset

import (
	"sync"
	"time"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// Store is the thread-safe holder of the current dataset.
// Readers always receive copies, so a view handed to an engine never changes
// underneath it.
type Store struct {
	mu       sync.RWMutex
	records  []analytics.Record
	loadedAt time.Time
	onChange func(total int)

	// notifyMu orders callback deliveries; each reports the size at delivery
	notifyMu sync.Mutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// OnChange registers a callback invoked with the new size after every mutation.
// Deliveries never overlap and the last one always carries the current size.
// fn must not mutate the store.
func (s *Store) OnChange(fn func(total int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Replace swaps the whole dataset
func (s *Store) Replace(records []analytics.Record) {
	s.mu.Lock()
	s.records = append([]analytics.Record(nil), records...)
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.notify()
}

// Append adds records to the end of the dataset
func (s *Store) Append(records ...analytics.Record) {
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	s.records = append(s.records, records...)
	s.mu.Unlock()

	s.notify()
}

func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	total, fn := len(s.records), s.onChange
	s.mu.RUnlock()

	if fn != nil {
		fn(total)
	}
}

// Snapshot returns a copy of every record
func (s *Store) Snapshot() analytics.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(analytics.Dataset, len(s.records))
	copy(out, s.records)
	return out
}

// View returns the records matching f, in store order
func (s *Store) View(f Filter) (analytics.Dataset, error) {
	m, err := f.Compile()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(analytics.Dataset, 0, len(s.records))
	for _, r := range s.records {
		if m.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// LoadedAt returns when the dataset was last replaced
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// DateRange is the span of dates in a view
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

// RangeOf returns the inclusive date span of ds; false when ds has no parsable dates
func RangeOf(ds analytics.Dataset) (DateRange, bool) {
	var lo, hi time.Time
	found := false
	for _, r := range ds {
		t, err := r.Time()
		if err != nil {
			continue
		}
		if !found || t.Before(lo) {
			lo = t
		}
		if !found || t.After(hi) {
			hi = t
		}
		found = true
	}
	if !found {
		return DateRange{}, false
	}

	return DateRange{
		From: lo.Format(analytics.DateLayout),
		To:   hi.Format(analytics.DateLayout),
		Days: int(hi.Sub(lo).Hours()/24) + 1,
	}, true
}

// DateRange returns the span of the whole dataset
func (s *Store) DateRange() (DateRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RangeOf(s.records)
}
