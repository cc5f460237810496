package params

import "github.com/san-kum/boilersim/internal/boiler"

// Panel is the full set of operator inputs. It is a value: every edit
// returns a new Panel.
type Panel struct {
	Parameters boiler.Parameters
	Setpoints  boiler.Setpoints
}

// DefaultPanel builds a panel from catalogue defaults. Specific heat is not
// operator adjustable and is taken from the boiler defaults.
func DefaultPanel() Panel {
	p := Panel{}
	p.Parameters.SpecificHeatCapacity = boiler.DefaultSpecificHeat
	for _, d := range catalogue {
		*d.field(&p) = d.ToSI(d.Default)
	}
	return p
}

// Get returns the display value for key.
func (p Panel) Get(key string) (float64, error) {
	d, err := Lookup(key)
	if err != nil {
		return 0, err
	}
	return d.FromSI(*d.field(&p)), nil
}

// Set stores a display value for key, clamped and snapped to its range.
func (p Panel) Set(key string, display float64) (Panel, error) {
	d, err := Lookup(key)
	if err != nil {
		return p, err
	}
	*d.field(&p) = d.ToSI(d.Clamp(display))
	return p, nil
}

// Nudge moves key one step up (dir > 0) or down (dir < 0).
func (p Panel) Nudge(key string, dir int) (Panel, error) {
	d, err := Lookup(key)
	if err != nil {
		return p, err
	}
	cur := d.FromSI(*d.field(&p))
	switch {
	case dir > 0:
		cur = d.Increment(cur)
	case dir < 0:
		cur = d.Decrement(cur)
	}
	*d.field(&p) = d.ToSI(cur)
	return p, nil
}

// Violation describes a value outside its operator range.
type Violation struct {
	Descriptor Descriptor
	Value      float64 // display units
}

// Check lists every panel value that falls outside the catalogue ranges.
// Values outside the panel ranges may still be physically valid.
func (p Panel) Check() []Violation {
	var out []Violation
	for _, d := range catalogue {
		v := d.FromSI(*d.field(&p))
		if !d.Contains(v) {
			out = append(out, Violation{Descriptor: d, Value: v})
		}
	}
	return out
}
