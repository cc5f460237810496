package sim

import (
	"fmt"

	"github.com/san-kum/boilersim/internal/boiler"
)

// Sample is everything known about one tick after it completed.
type Sample struct {
	State     boiler.State      `json:"state"`
	Commands  boiler.Commands   `json:"commands"`
	Params    boiler.Parameters `json:"-"`
	Setpoints boiler.Setpoints  `json:"setpoints"`
	Dt        float64           `json:"dt"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnStep(s Sample) { f(s) }

// Config describes a batch run in simulated seconds.
type Config struct {
	Dt       float64
	Duration float64
}

func (c Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	return nil
}

// Steps is the number of whole ticks that fit in Duration.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded sample.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}

// Series extracts one signal from every sample.
func (r *Result) Series(f func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = f(s)
	}
	return out
}

// SimError records which tick of a run failed.
type SimError struct {
	Time float64
	Step int
	Err  error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Err)
}

func (e SimError) Unwrap() error { return e.Err }
