package batcher

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	flushes []Flush
}

func (r *recorder) record(f Flush) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes = append(r.flushes, f)
}

func (r *recorder) snapshot() []Flush {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Flush(nil), r.flushes...)
}

func TestBatcherFlushesOnThreshold(t *testing.T) {
	rec := &recorder{}
	b := New(3, 0, rec.record)

	b.Enqueue("a")
	b.Enqueue("b")
	if got := len(rec.snapshot()); got != 0 {
		t.Fatalf("Expected no flush below threshold, got %d", got)
	}
	b.Enqueue("a")

	flushes := rec.snapshot()
	if len(flushes) != 1 {
		t.Fatalf("Expected 1 flush, got %d", len(flushes))
	}
	f := flushes[0]
	if f.Events != 3 || f.Counts["a"] != 2 || f.Counts["b"] != 1 {
		t.Fatalf("Unexpected flush: %+v", f)
	}
	if b.Pending() != 0 {
		t.Fatalf("Expected empty buffer after flush, got %d", b.Pending())
	}
}

func TestBatcherFlushesOnInterval(t *testing.T) {
	rec := &recorder{}
	b := New(0, 5*time.Millisecond, rec.record)
	b.Start()
	defer b.Stop()

	b.Enqueue("abc123")

	deadline := time.Now().Add(time.Second)
	for len(rec.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	flushes := rec.snapshot()
	if len(flushes) == 0 {
		t.Fatal("Expected a timed flush")
	}
	if flushes[0].Counts["abc123"] != 1 {
		t.Fatalf("Unexpected flush: %+v", flushes[0])
	}
}

func TestBatcherSkipsEmptyFlush(t *testing.T) {
	rec := &recorder{}
	b := New(10, 0, rec.record)
	b.Flush()
	if got := len(rec.snapshot()); got != 0 {
		t.Fatalf("Expected no flush for empty buffer, got %d", got)
	}
}

func TestBatcherStopDrainsBuffer(t *testing.T) {
	rec := &recorder{}
	b := New(100, time.Hour, rec.record)
	b.Start()

	b.Enqueue("x")
	b.Enqueue("y")
	b.Stop()
	b.Stop()

	flushes := rec.snapshot()
	if len(flushes) != 1 || flushes[0].Events != 2 {
		t.Fatalf("Expected one final flush of 2 events, got %+v", flushes)
	}
}

func TestBatcherConcurrentEnqueueLosesNothing(t *testing.T) {
	rec := &recorder{}
	b := New(7, 0, rec.record)

	const workers, perWorker = 16, 250
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				b.Enqueue("hot")
			}
		}()
	}
	wg.Wait()
	b.Flush()

	var total uint64
	for _, f := range rec.snapshot() {
		total += f.Counts["hot"]
	}
	if total != workers*perWorker {
		t.Fatalf("Expected %d events across flushes, got %d", workers*perWorker, total)
	}
}
