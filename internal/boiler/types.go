package boiler

import "math"

// DefaultSpecificHeat is the specific heat capacity of water in J/(kg*°C).
const DefaultSpecificHeat = 4200.0

// Parameters describe the physical plant. They are treated as immutable for
// the duration of a step and may be replaced between steps.
type Parameters struct {
	CrossSectionArea       float64 `yaml:"cross_section_area" json:"cross_section_area"`             // m2
	InflowMaxRate          float64 `yaml:"inflow_max_rate" json:"inflow_max_rate"`                   // m3/s
	InflowTemperature      float64 `yaml:"inflow_temperature" json:"inflow_temperature"`             // °C
	HeaterPowerMax         float64 `yaml:"heater_power_max" json:"heater_power_max"`                 // W
	HeaterEfficiency       float64 `yaml:"heater_efficiency" json:"heater_efficiency"`               // (0,1]
	EnergyDrainCoefficient float64 `yaml:"energy_drain_coefficient" json:"energy_drain_coefficient"` // W
	SpecificHeatCapacity   float64 `yaml:"specific_heat_capacity" json:"specific_heat_capacity"`     // J/(kg*°C)
	TimeStep               float64 `yaml:"time_step" json:"time_step"`                               // s
}

// DefaultParameters returns the plant the operator panel starts with.
func DefaultParameters() Parameters {
	return Parameters{
		CrossSectionArea:       1.0,
		InflowMaxRate:          0.0008,
		InflowTemperature:      10,
		HeaterPowerMax:         3000,
		HeaterEfficiency:       0.85,
		EnergyDrainCoefficient: 100,
		SpecificHeatCapacity:   DefaultSpecificHeat,
		TimeStep:               60,
	}
}

// Validate reports the first parameter outside its physical domain.
func (p Parameters) Validate() error {
	if err := positive("cross section area", p.CrossSectionArea); err != nil {
		return err
	}
	if err := nonNegative("inflow max rate", p.InflowMaxRate); err != nil {
		return err
	}
	if err := nonNegative("inflow temperature", p.InflowTemperature); err != nil {
		return err
	}
	if err := nonNegative("heater power max", p.HeaterPowerMax); err != nil {
		return err
	}
	if !(p.HeaterEfficiency > 0 && p.HeaterEfficiency <= 1) {
		return invalid("heater efficiency must be in (0,1], got %g", p.HeaterEfficiency)
	}
	if err := nonNegative("energy drain coefficient", p.EnergyDrainCoefficient); err != nil {
		return err
	}
	if err := positive("specific heat capacity", p.SpecificHeatCapacity); err != nil {
		return err
	}
	return positive("time step", p.TimeStep)
}

// Setpoints are the operator's targets.
type Setpoints struct {
	RequiredLevel       float64 `yaml:"required_level" json:"required_level"`             // m
	RequiredTemperature float64 `yaml:"required_temperature" json:"required_temperature"` // °C
	RequiredOutflow     float64 `yaml:"required_outflow" json:"required_outflow"`         // m3/s
}

// DefaultSetpoints returns the operator panel's initial targets.
func DefaultSetpoints() Setpoints {
	return Setpoints{
		RequiredLevel:       1.0,
		RequiredTemperature: 50,
		RequiredOutflow:     0,
	}
}

func (s Setpoints) Validate() error {
	if err := nonNegative("required level", s.RequiredLevel); err != nil {
		return err
	}
	if err := nonNegative("required temperature", s.RequiredTemperature); err != nil {
		return err
	}
	return nonNegative("required outflow", s.RequiredOutflow)
}

// State is a snapshot of the boiler. The zero value is a cold, empty tank.
type State struct {
	Level       float64 `json:"level"`       // m
	Temperature float64 `json:"temperature"` // °C
	Inflow      float64 `json:"inflow"`      // m3/s
	Outflow     float64 `json:"outflow"`     // m3/s
	Power       float64 `json:"power"`       // W
	Elapsed     float64 `json:"elapsed"`     // s
}

// Commands are actuator values produced by the controller.
type Commands struct {
	Inflow  float64 `json:"inflow"`  // m3/s
	Outflow float64 `json:"outflow"` // m3/s
	Power   float64 `json:"power"`   // W
}

// InflowSaturated reports whether the inflow sits at the pump ceiling.
func (c Commands) InflowSaturated(p Parameters) bool {
	return p.InflowMaxRate > 0 && c.Inflow >= p.InflowMaxRate
}

// PowerSaturated reports whether the heater sits at its ceiling.
func (c Commands) PowerSaturated(p Parameters) bool {
	return p.HeaterPowerMax > 0 && c.Power >= p.HeaterPowerMax
}

func (c Commands) validate() error {
	if err := nonNegative("inflow", c.Inflow); err != nil {
		return err
	}
	if err := nonNegative("outflow", c.Outflow); err != nil {
		return err
	}
	return nonNegative("power", c.Power)
}

func isInf(v float64) bool { return math.IsInf(v, 0) }
