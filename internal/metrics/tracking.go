package metrics

import (
	"math"

	"github.com/san-kum/boilersim/internal/sim"
)

// TrackingError is the RMS distance between a signal and its setpoint.
type TrackingError struct {
	name    string
	signal  func(sim.Sample) (value, target float64)
	sumSq   float64
	samples int
}

func NewLevelError() *TrackingError {
	return &TrackingError{
		name: "level_rms_error",
		signal: func(s sim.Sample) (float64, float64) {
			return s.State.Level, s.Setpoints.RequiredLevel
		},
	}
}

func NewTemperatureError() *TrackingError {
	return &TrackingError{
		name: "temperature_rms_error",
		signal: func(s sim.Sample) (float64, float64) {
			return s.State.Temperature, s.Setpoints.RequiredTemperature
		},
	}
}

func (t *TrackingError) Name() string { return t.name }

func (t *TrackingError) Observe(s sim.Sample) {
	v, target := t.signal(s)
	d := v - target
	t.sumSq += d * d
	t.samples++
}

func (t *TrackingError) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return math.Sqrt(t.sumSq / float64(t.samples))
}

func (t *TrackingError) Reset() {
	t.sumSq = 0
	t.samples = 0
}
