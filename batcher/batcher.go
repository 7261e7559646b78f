package batcher

import (
	"sync"
	"time"
)

// Batcher collects accepted codes and flushes their counts whenever threshold
// events are buffered or flushInterval elapses, whichever comes first.
type Batcher struct {
	mu            sync.Mutex
	counts        map[string]uint64
	pending       int
	threshold     int
	flushInterval time.Duration
	onFlush       FlushFunc

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// New returns a Batcher handing flushes to onFlush. Pass threshold=0 to
// disable size-based flushing and flushInterval=0 to disable the ticker.
func New(threshold int, flushInterval time.Duration, onFlush FlushFunc) *Batcher {
	return &Batcher{
		counts:        make(map[string]uint64),
		threshold:     threshold,
		flushInterval: flushInterval,
		onFlush:       onFlush,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background ticker. Call Stop to end it.
func (b *Batcher) Start() {
	b.startOnce.Do(func() {
		if b.flushInterval <= 0 {
			close(b.doneCh)
			return
		}
		ticker := time.NewTicker(b.flushInterval)
		go func() {
			defer close(b.doneCh)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					b.Flush()
				case <-b.stopCh:
					return
				}
			}
		}()
	})
}

// Stop ends the ticker and flushes whatever is still buffered.
func (b *Batcher) Stop() {
	b.stopOnce.Do(func() {
		b.Start()
		close(b.stopCh)
		<-b.doneCh
		b.Flush()
	})
}

// Enqueue records one accepted event for code. It never blocks on I/O.
func (b *Batcher) Enqueue(code string) {
	b.mu.Lock()
	b.counts[code]++
	b.pending++
	var out *Flush
	if b.threshold > 0 && b.pending >= b.threshold {
		out = b.takeLocked()
	}
	b.mu.Unlock()

	if out != nil {
		b.onFlush(*out)
	}
}

// Flush hands the buffered counts to onFlush immediately.
func (b *Batcher) Flush() {
	b.mu.Lock()
	out := b.takeLocked()
	b.mu.Unlock()

	if out != nil {
		b.onFlush(*out)
	}
}

// Pending is the number of events buffered since the last flush.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// takeLocked assumes b.mu is held.
func (b *Batcher) takeLocked() *Flush {
	if b.pending == 0 {
		return nil
	}
	out := &Flush{
		Counts:    b.counts,
		Events:    b.pending,
		FlushedAt: time.Now().UTC(),
	}
	b.counts = make(map[string]uint64, len(out.Counts))
	b.pending = 0
	return out
}
