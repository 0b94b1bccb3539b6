// Package timeline holds the ordered sequence of weekly records for one audit
// run and discovers snapshot files on disk.
package timeline

import (
	"fmt"
	"slices"

	"github.com/roach88/trainaudit/internal/canon"
	"github.com/roach88/trainaudit/internal/snapshot"
)

// OrderError reports week numbers that do not strictly increase.
type OrderError struct {
	Index    int
	Previous int
	Week     int
	Source   string
}

func (e *OrderError) Error() string {
	msg := fmt.Sprintf("week %d at position %d does not follow week %d", e.Week, e.Index, e.Previous)
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}
	return msg
}

// Timeline is an immutable, week-ordered sequence of records.
type Timeline struct {
	records []*snapshot.Record
	digest  string
}

// Pair is two adjacent weeks.
type Pair struct {
	Prev, Curr *snapshot.Record
}

// Triple is three consecutive weeks.
type Triple struct {
	A, B, C *snapshot.Record
}

// New builds a timeline. Week numbers must strictly increase; gaps are allowed.
func New(records []*snapshot.Record) (*Timeline, error) {
	digests := make([]string, 0, len(records))
	for i, rec := range records {
		if i > 0 && rec.Week <= records[i-1].Week {
			return nil, &OrderError{
				Index:    i,
				Previous: records[i-1].Week,
				Week:     rec.Week,
				Source:   rec.Source,
			}
		}
		digests = append(digests, rec.Digest)
	}

	digest, err := canon.TimelineDigest(digests)
	if err != nil {
		return nil, err
	}

	return &Timeline{records: slices.Clone(records), digest: digest}, nil
}

// Len is the number of weeks.
func (t *Timeline) Len() int {
	return len(t.records)
}

// At returns the record at position i.
func (t *Timeline) At(i int) *snapshot.Record {
	return t.records[i]
}

// Records returns the records in week order. The slice is a copy.
func (t *Timeline) Records() []*snapshot.Record {
	return slices.Clone(t.records)
}

// Week looks a record up by week number.
func (t *Timeline) Week(n int) (*snapshot.Record, bool) {
	i, found := slices.BinarySearchFunc(t.records, n, func(r *snapshot.Record, week int) int {
		return r.Week - week
	})
	if !found {
		return nil, false
	}
	return t.records[i], true
}

// Digest identifies the exact ordered inputs of the timeline.
func (t *Timeline) Digest() string {
	return t.digest
}

// Pairs returns every adjacent (previous, current) pair.
func (t *Timeline) Pairs() []Pair {
	if len(t.records) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(t.records)-1)
	for i := 1; i < len(t.records); i++ {
		pairs = append(pairs, Pair{Prev: t.records[i-1], Curr: t.records[i]})
	}
	return pairs
}

// Triples returns every run of three consecutive weeks.
func (t *Timeline) Triples() []Triple {
	if len(t.records) < 3 {
		return nil
	}
	triples := make([]Triple, 0, len(t.records)-2)
	for i := 2; i < len(t.records); i++ {
		triples = append(triples, Triple{A: t.records[i-2], B: t.records[i-1], C: t.records[i]})
	}
	return triples
}
