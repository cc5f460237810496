package metrics

import "github.com/san-kum/boilersim/internal/sim"

// Saturation is the fraction of ticks where the heater ran at its ceiling.
type Saturation struct {
	name      string
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "heater_saturation"}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(x sim.Sample) {
	if x.Commands.PowerSaturated(x.Params) {
		s.saturated++
	}
	s.samples++
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// Defaults returns a fresh instance of every boiler metric.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewHeaterEnergy(),
		NewStoredEnergy(),
		NewLevelError(),
		NewTemperatureError(),
		NewSaturation(),
	}
}
