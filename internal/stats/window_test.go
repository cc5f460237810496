package stats

import (
	"math"
	"testing"
)

func TestNewWindowCapacity(t *testing.T) {
	if _, err := NewWindow(0); err != ErrCapacity {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
	w, err := NewWindow(3)
	if err != nil {
		t.Fatal(err)
	}
	if w.Cap() != 3 || w.Len() != 0 || w.Full() {
		t.Errorf("unexpected fresh window: cap=%d len=%d", w.Cap(), w.Len())
	}
	if w.Average() != 0 {
		t.Errorf("expected empty average 0, got %g", w.Average())
	}
	if _, ok := w.Last(); ok {
		t.Error("expected no last sample")
	}
}

func TestWindowWrapAround(t *testing.T) {
	w, _ := NewWindow(3)

	for _, v := range []float64{1, 2, 3} {
		if _, ok := w.Push(v); ok {
			t.Fatalf("unexpected eviction while filling with %g", v)
		}
	}
	if !w.Full() || w.Average() != 2 {
		t.Errorf("expected full window averaging 2, got %g", w.Average())
	}

	evicted, ok := w.Push(10)
	if !ok || evicted != 1 {
		t.Errorf("expected eviction of 1, got %g (%v)", evicted, ok)
	}
	if got := w.Values(); got[0] != 2 || got[1] != 3 || got[2] != 10 {
		t.Errorf("expected [2 3 10], got %v", got)
	}
	if w.Sum() != 15 {
		t.Errorf("expected sum 15, got %g", w.Sum())
	}
	if last, _ := w.Last(); last != 10 {
		t.Errorf("expected last 10, got %g", last)
	}
}

func TestWindowRunningSumMatchesRecomputed(t *testing.T) {
	w, _ := NewWindow(7)
	for i := 0; i < 1000; i++ {
		w.Push(math.Sin(float64(i)) * 100)
	}
	sum := 0.0
	for _, v := range w.Values() {
		sum += v
	}
	if math.Abs(sum-w.Sum()) > 1e-9 {
		t.Errorf("running sum drifted: %g vs %g", w.Sum(), sum)
	}
	if w.Len() != 7 {
		t.Errorf("expected 7 samples, got %d", w.Len())
	}
}

func TestWindowReset(t *testing.T) {
	w, _ := NewWindow(2)
	w.Push(4)
	w.Push(5)
	w.Push(6)
	w.Reset()
	if w.Len() != 0 || w.Sum() != 0 || w.Average() != 0 {
		t.Errorf("expected empty window after reset")
	}
	w.Push(8)
	if got := w.Values(); len(got) != 1 || got[0] != 8 {
		t.Errorf("expected [8] after refill, got %v", got)
	}
}
