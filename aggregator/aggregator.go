package aggregator

import (
	"sort"
	"sync"
	"sync/atomic"
)

// DefaultTopN is the leaderboard size served by the stats endpoint.
const DefaultTopN = 20

// CodeCount is one row of a leaderboard snapshot.
type CodeCount struct {
	Code  string `json:"code"`
	Count uint64 `json:"count"`
}

type counter struct {
	n atomic.Uint64
	// seq is the first-seen order of the code and never changes.
	seq uint64
}

// EventAggregator counts events per code. It is safe for concurrent use and
// is the only owner of the counter table.
//
// The map lock only guards membership. Counts live in per-code atomics, so an
// increment for a known code holds the read lock for a single lookup.
type EventAggregator struct {
	mu      sync.RWMutex
	entries map[string]*counter
	nextSeq uint64
}

// New returns an empty aggregator.
func New() *EventAggregator {
	return &EventAggregator{
		entries: make(map[string]*counter),
	}
}

// Increment adds one to code and returns the post-increment count.
// The caller is expected to have validated code.
func (a *EventAggregator) Increment(code string) uint64 {
	a.mu.RLock()
	c, ok := a.entries[code]
	a.mu.RUnlock()
	if ok {
		return c.n.Add(1)
	}

	a.mu.Lock()
	c, ok = a.entries[code]
	if !ok {
		c = &counter{seq: a.nextSeq}
		a.nextSeq++
		a.entries[code] = c
	}
	a.mu.Unlock()
	return c.n.Add(1)
}

// Get returns the current count for code, or 0 if it was never seen.
func (a *EventAggregator) Get(code string) uint64 {
	a.mu.RLock()
	c, ok := a.entries[code]
	a.mu.RUnlock()
	if !ok {
		return 0
	}
	return c.n.Load()
}

// Size returns the number of distinct codes ever seen.
func (a *EventAggregator) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// TopN returns up to n codes ordered by count descending. Codes with equal
// counts keep the order in which they were first seen.
//
// The result is built from a snapshot taken under the read lock; counts are
// read one entry at a time, so increments racing with the copy may or may not
// be reflected. Sorting happens after the lock is released.
func (a *EventAggregator) TopN(n int) []CodeCount {
	if n <= 0 {
		return []CodeCount{}
	}

	type row struct {
		CodeCount
		seq uint64
	}

	a.mu.RLock()
	rows := make([]row, 0, len(a.entries))
	for code, c := range a.entries {
		rows = append(rows, row{CodeCount: CodeCount{Code: code, Count: c.n.Load()}, seq: c.seq})
	}
	a.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].seq < rows[j].seq
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]CodeCount, len(rows))
	for i, r := range rows {
		out[i] = r.CodeCount
	}
	return out
}
