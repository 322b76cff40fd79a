package watch

import (
	"sync"
	"testing"
	"time"
)

// TestDebouncer_CoalescesBursts verifies that rapid triggers for one path
// produce exactly one callback.
func TestDebouncer_CoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	fired := make(map[string]int)

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
	})

	for i := 0; i < 10; i++ {
		d.Trigger("a.csv")
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired["a.csv"] != 1 {
		t.Errorf("expected exactly 1 callback, got %d", fired["a.csv"])
	}
}

// TestDebouncer_IndependentPaths verifies that different paths debounce
// independently.
func TestDebouncer_IndependentPaths(t *testing.T) {
	var mu sync.Mutex
	fired := make(map[string]int)

	d := NewDebouncer(30*time.Millisecond, func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
	})

	d.Trigger("a.csv")
	d.Trigger("b.csv")
	d.Trigger("a.csv")

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired["a.csv"] != 1 || fired["b.csv"] != 1 {
		t.Errorf("expected one callback per path, got %v", fired)
	}
}

// TestDebouncer_ResetOnActivity verifies that new activity pushes the
// deadline back: steady triggers inside the delay keep the callback from
// firing until the burst quiets.
func TestDebouncer_ResetOnActivity(t *testing.T) {
	firedAt := make(chan time.Time, 1)

	d := NewDebouncer(60*time.Millisecond, func(path string) {
		select {
		case firedAt <- time.Now():
		default:
		}
	})

	start := time.Now()
	// Re-trigger every 20ms for 120ms; the deadline must keep moving.
	for i := 0; i < 7; i++ {
		d.Trigger("a.csv")
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case at := <-firedAt:
		if at.Sub(start) < 140*time.Millisecond {
			t.Errorf("callback fired %s after first trigger; want at least 140ms (deadline did not reset)", at.Sub(start))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("callback never fired")
	}
}

// TestDebouncer_CancelAll verifies that shutdown prevents pending callbacks.
func TestDebouncer_CancelAll(t *testing.T) {
	fired := make(chan string, 10)

	d := NewDebouncer(40*time.Millisecond, func(path string) {
		fired <- path
	})

	d.Trigger("a.csv")
	d.Trigger("b.csv")
	if d.PendingCount() != 2 {
		t.Fatalf("expected 2 pending triggers, got %d", d.PendingCount())
	}

	d.CancelAll()
	if d.PendingCount() != 0 {
		t.Errorf("expected 0 pending triggers after CancelAll, got %d", d.PendingCount())
	}

	select {
	case path := <-fired:
		t.Errorf("callback fired for %s after CancelAll", path)
	case <-time.After(120 * time.Millisecond):
	}
}
