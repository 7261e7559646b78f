package batcher

import "time"

// Flush is the aggregated delta of accepted events since the previous flush.
type Flush struct {
	Counts    map[string]uint64 `json:"counts"`
	Events    int               `json:"events"`
	FlushedAt time.Time         `json:"flushed_at"`
}

// FlushFunc receives each non-empty Flush. It runs outside the batcher lock.
type FlushFunc func(Flush)
