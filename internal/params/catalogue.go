package params

import (
	"errors"
	"fmt"
)

// ErrUnknownParameter is returned for a key missing from the catalogue.
var ErrUnknownParameter = errors.New("params: unknown parameter")

// Group separates plant parameters from operator targets.
type Group int

const (
	Plant Group = iota
	Target
)

func (g Group) String() string {
	if g == Target {
		return "requirements"
	}
	return "parameters"
}

// Descriptor is an operator-adjustable value. Min, Max, Step and Default are
// in display units; Factor converts display units to SI.
type Descriptor struct {
	Key     string
	Name    string
	Unit    string
	Group   Group
	Min     float64
	Max     float64
	Step    float64
	Default float64
	Factor  float64

	field func(*Panel) *float64
}

func (d Descriptor) Clamp(v float64) float64     { return Clamp(v, d.Min, d.Max, d.Step) }
func (d Descriptor) Increment(v float64) float64 { return d.Clamp(v + d.Step) }
func (d Descriptor) Decrement(v float64) float64 { return d.Clamp(v - d.Step) }
func (d Descriptor) CanIncrement(v float64) bool { return v < d.Max }
func (d Descriptor) CanDecrement(v float64) bool { return v > d.Min }
func (d Descriptor) Contains(v float64) bool     { return v >= d.Min && v <= d.Max }
func (d Descriptor) ToSI(v float64) float64      { return v * d.Factor }
func (d Descriptor) FromSI(v float64) float64    { return roundTo(v/d.Factor, 9) }

var catalogue = []Descriptor{
	{Key: "cross_section_area", Name: "Cross Section Area", Unit: "m2", Group: Plant,
		Min: 1, Max: 2, Step: 0.1, Default: 1, Factor: 1,
		field: func(p *Panel) *float64 { return &p.Parameters.CrossSectionArea }},
	{Key: "inflow_max_rate", Name: "Max Inflow", Unit: "l/s", Group: Plant,
		Min: 0.1, Max: 1.5, Step: 0.1, Default: 0.8, Factor: 0.001,
		field: func(p *Panel) *float64 { return &p.Parameters.InflowMaxRate }},
	{Key: "inflow_temperature", Name: "Inflow Temperature", Unit: "°C", Group: Plant,
		Min: 5, Max: 15, Step: 1, Default: 10, Factor: 1,
		field: func(p *Panel) *float64 { return &p.Parameters.InflowTemperature }},
	{Key: "heater_power_max", Name: "Max Heater Power", Unit: "kW", Group: Plant,
		Min: 0.5, Max: 6, Step: 0.5, Default: 3, Factor: 1000,
		field: func(p *Panel) *float64 { return &p.Parameters.HeaterPowerMax }},
	{Key: "heater_efficiency", Name: "Heater Efficiency", Unit: "%", Group: Plant,
		Min: 75, Max: 100, Step: 5, Default: 85, Factor: 0.01,
		field: func(p *Panel) *float64 { return &p.Parameters.HeaterEfficiency }},
	{Key: "energy_drain_coefficient", Name: "Energy Drain Coefficient", Unit: "W", Group: Plant,
		Min: 0, Max: 500, Step: 100, Default: 100, Factor: 1,
		field: func(p *Panel) *float64 { return &p.Parameters.EnergyDrainCoefficient }},
	{Key: "time_step", Name: "Time Step", Unit: "s", Group: Plant,
		Min: 60, Max: 3600, Step: 60, Default: 60, Factor: 1,
		field: func(p *Panel) *float64 { return &p.Parameters.TimeStep }},
	{Key: "required_level", Name: "Water Level", Unit: "m", Group: Target,
		Min: 0, Max: 2, Step: 0.1, Default: 1, Factor: 1,
		field: func(p *Panel) *float64 { return &p.Setpoints.RequiredLevel }},
	{Key: "required_temperature", Name: "Water Temperature", Unit: "°C", Group: Target,
		Min: 40, Max: 60, Step: 1, Default: 50, Factor: 1,
		field: func(p *Panel) *float64 { return &p.Setpoints.RequiredTemperature }},
	{Key: "required_outflow", Name: "Water Outflow", Unit: "l/s", Group: Target,
		Min: 0, Max: 1.5, Step: 0.1, Default: 0, Factor: 0.001,
		field: func(p *Panel) *float64 { return &p.Setpoints.RequiredOutflow }},
}

// Catalogue returns every descriptor in panel order.
func Catalogue() []Descriptor {
	out := make([]Descriptor, len(catalogue))
	copy(out, catalogue)
	return out
}

func Lookup(key string) (Descriptor, error) {
	for _, d := range catalogue {
		if d.Key == key {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
}

// Keys lists catalogue keys in panel order.
func Keys() []string {
	keys := make([]string, len(catalogue))
	for i, d := range catalogue {
		keys[i] = d.Key
	}
	return keys
}
