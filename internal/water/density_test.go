package water

import (
	"errors"
	"math"
	"testing"
)

func TestDensityTable(t *testing.T) {
	tests := []struct {
		celsius float64
		want    float64
	}{
		{0, 999.8},
		{3.999, 999.8},
		{4, 999.972},
		{9.5, 999.972},
		{10, 999.97},
		{14.9, 999.97},
		{15, 999.1},
		{20, 998.2},
		{25, 997.0},
		{30, 995.7},
		{39.99, 995.7},
		{40, 992.2},
		{50, 992.2},
		{60, 983.2},
		{79.9, 983.2},
		{80, 971.8},
		{100, 971.8},
		{1e6, 971.8},
	}

	for _, tt := range tests {
		got, err := Density(tt.celsius)
		if err != nil {
			t.Fatalf("Density(%g) returned error: %v", tt.celsius, err)
		}
		if got != tt.want {
			t.Errorf("Density(%g) = %g, want %g", tt.celsius, got, tt.want)
		}
	}
}

func TestDensityNegative(t *testing.T) {
	for _, c := range []float64{-0.001, -4, -273.15, math.NaN()} {
		_, err := Density(c)
		if !errors.Is(err, ErrNegativeTemperature) {
			t.Errorf("Density(%g): expected ErrNegativeTemperature, got %v", c, err)
		}
	}
}

func TestDensityNonIncreasingFromMaximum(t *testing.T) {
	prev, err := Density(4)
	if err != nil {
		t.Fatal(err)
	}
	for c := 4.0; c <= 120; c += 0.25 {
		d, err := Density(c)
		if err != nil {
			t.Fatal(err)
		}
		if d > prev {
			t.Fatalf("density increased at %g: %g > %g", c, d, prev)
		}
		prev = d
	}
}

func TestDensityPure(t *testing.T) {
	a, _ := Density(42)
	b, _ := Density(42)
	if a != b {
		t.Errorf("expected identical results, got %g and %g", a, b)
	}
}

func TestBreakpointsCopy(t *testing.T) {
	bps := Breakpoints()
	if len(bps) != 9 {
		t.Fatalf("expected 9 breakpoints, got %d", len(bps))
	}
	bps[0].Density = 0
	if d, _ := Density(0); d != 999.8 {
		t.Errorf("mutating Breakpoints() leaked into table: got %g", d)
	}
	for i := 1; i < len(bps); i++ {
		if bps[i].UpTo <= bps[i-1].UpTo {
			t.Errorf("breakpoints not ascending at %d", i)
		}
	}
}
