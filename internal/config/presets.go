package config

import "sort"

var Presets = map[string]*Config{
	"cold-start": DefaultConfig(),
	"hot-standby": func() *Config {
		c := DefaultConfig()
		c.Initial = InitialState{Level: 1, Temperature: 50}
		c.Duration = 7200
		return c
	}(),
	"draining": func() *Config {
		c := DefaultConfig()
		c.Initial = InitialState{Level: 1.5, Temperature: 50}
		c.Setpoints.RequiredLevel = 0.5
		c.Setpoints.RequiredOutflow = 0.001
		return c
	}(),
	"high-demand": func() *Config {
		c := DefaultConfig()
		c.Parameters.CrossSectionArea = 2
		c.Parameters.InflowMaxRate = 0.0015
		c.Parameters.HeaterPowerMax = 6000
		c.Initial = InitialState{Level: 1, Temperature: 50}
		c.Setpoints.RequiredOutflow = 0.0015
		c.Duration = 14400
		return c
	}(),
	"winter": func() *Config {
		c := DefaultConfig()
		c.Parameters.InflowTemperature = 5
		c.Parameters.EnergyDrainCoefficient = 500
		c.Parameters.TimeStep = 600
		c.Setpoints.RequiredTemperature = 60
		c.Duration = 86400
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
