package aggregator

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetUnseenCodeIsZero(t *testing.T) {
	a := New()
	if got := a.Get("missing"); got != 0 {
		t.Fatalf("Expected 0 for unseen code, got %d", got)
	}
	if a.Size() != 0 {
		t.Fatalf("Expected empty aggregator, got size %d", a.Size())
	}
}

func TestIncrementReturnsPostIncrementValue(t *testing.T) {
	a := New()
	for want := uint64(1); want <= 5; want++ {
		if got := a.Increment("abc123"); got != want {
			t.Fatalf("Increment() = %d, want %d", got, want)
		}
	}
	if got := a.Get("abc123"); got != 5 {
		t.Fatalf("Get() = %d, want 5", got)
	}
	if a.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", a.Size())
	}
}

func TestConcurrentIncrementsAreNotLost(t *testing.T) {
	a := New()
	const callers = 10000

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			a.Increment("hot")
		}()
	}
	wg.Wait()

	if got := a.Get("hot"); got != callers {
		t.Fatalf("Expected %d after concurrent increments, got %d", callers, got)
	}
}

func TestConcurrentIncrementsReturnDistinctValues(t *testing.T) {
	a := New()
	const callers = 2000

	seen := make([]bool, callers+1)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			n := a.Increment("k")
			mu.Lock()
			defer mu.Unlock()
			if n == 0 || n > callers || seen[n] {
				t.Errorf("unexpected or duplicate post-increment value %d", n)
				return
			}
			seen[n] = true
		}()
	}
	wg.Wait()
}

func TestConcurrentIncrementsAcrossManyCodes(t *testing.T) {
	a := New()
	const codes = 50
	const perCode = 200

	var wg sync.WaitGroup
	for c := 0; c < codes; c++ {
		code := fmt.Sprintf("code-%d", c)
		for i := 0; i < perCode; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.Increment(code)
			}()
		}
	}
	// Readers run alongside the writers.
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.TopN(DefaultTopN)
			_ = a.Size()
		}()
	}
	wg.Wait()

	if a.Size() != codes {
		t.Fatalf("Size() = %d, want %d", a.Size(), codes)
	}
	for c := 0; c < codes; c++ {
		code := fmt.Sprintf("code-%d", c)
		if got := a.Get(code); got != perCode {
			t.Fatalf("Get(%q) = %d, want %d", code, got, perCode)
		}
	}
}

func TestTopNOrdersByCountDescending(t *testing.T) {
	a := New()
	bump(a, "a", 1)
	bump(a, "b", 3)
	bump(a, "c", 2)

	got := a.TopN(DefaultTopN)
	want := []CodeCount{{"b", 3}, {"c", 2}, {"a", 1}}
	assertRows(t, got, want)
}

func TestTopNBreaksTiesByFirstSeen(t *testing.T) {
	a := New()
	// Insertion order z, a, m; alphabetical order must not win.
	bump(a, "z", 2)
	bump(a, "a", 2)
	bump(a, "m", 2)
	bump(a, "top", 5)

	got := a.TopN(DefaultTopN)
	want := []CodeCount{{"top", 5}, {"z", 2}, {"a", 2}, {"m", 2}}
	assertRows(t, got, want)
}

func TestTopNTieOrderUsesFirstSeenNotLastUpdated(t *testing.T) {
	a := New()
	a.Increment("first")
	a.Increment("second")
	a.Increment("second")
	a.Increment("first")

	got := a.TopN(2)
	want := []CodeCount{{"first", 2}, {"second", 2}}
	assertRows(t, got, want)
}

func TestTopNCapsResult(t *testing.T) {
	a := New()
	for i := 0; i < 30; i++ {
		bump(a, fmt.Sprintf("c%02d", i), i+1)
	}

	got := a.TopN(DefaultTopN)
	if len(got) != DefaultTopN {
		t.Fatalf("Expected %d rows, got %d", DefaultTopN, len(got))
	}
	if got[0].Code != "c29" || got[0].Count != 30 {
		t.Fatalf("Expected c29=30 first, got %s=%d", got[0].Code, got[0].Count)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Fatalf("rows not sorted at %d: %d > %d", i, got[i].Count, got[i-1].Count)
		}
	}
}

func TestTopNNonPositiveAndEmpty(t *testing.T) {
	a := New()
	if got := a.TopN(DefaultTopN); len(got) != 0 {
		t.Fatalf("Expected no rows on empty aggregator, got %v", got)
	}
	bump(a, "x", 1)
	if got := a.TopN(0); len(got) != 0 {
		t.Fatalf("Expected no rows for n=0, got %v", got)
	}
}

func bump(a *EventAggregator, code string, n int) {
	for i := 0; i < n; i++ {
		a.Increment(code)
	}
}

func assertRows(t *testing.T, got, want []CodeCount) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d rows, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
