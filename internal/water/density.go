package water

import (
	"errors"
	"fmt"
)

// ErrNegativeTemperature is returned for temperatures below 0 °C.
var ErrNegativeTemperature = errors.New("water: temperature must be non-negative")

// Breakpoint is one row of the density table. It applies to temperatures
// from the previous row's UpTo (inclusive) up to UpTo (exclusive).
type Breakpoint struct {
	UpTo    float64 // °C
	Density float64 // kg/m3
}

// AboveLast is the density for temperatures at or past the last breakpoint.
const AboveLast = 971.8

var table = [...]Breakpoint{
	{UpTo: 4, Density: 999.8},
	{UpTo: 10, Density: 999.972},
	{UpTo: 15, Density: 999.97},
	{UpTo: 20, Density: 999.1},
	{UpTo: 25, Density: 998.2},
	{UpTo: 30, Density: 997.0},
	{UpTo: 40, Density: 995.7},
	{UpTo: 60, Density: 992.2},
	{UpTo: 80, Density: 983.2},
}

// Density returns the density of water in kg/m3 at the given temperature.
func Density(celsius float64) (float64, error) {
	if !(celsius >= 0) {
		return 0, fmt.Errorf("%w: got %g", ErrNegativeTemperature, celsius)
	}
	for _, bp := range table {
		if celsius < bp.UpTo {
			return bp.Density, nil
		}
	}
	return AboveLast, nil
}

// Breakpoints returns a copy of the density table.
func Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(table))
	copy(out, table[:])
	return out
}
