package sim

import (
	"fmt"
	"time"
)

const (
	DefaultTickInterval  = 100 * time.Millisecond
	DefaultClockInterval = time.Second
)

// Pacing maps wall-clock ticks onto simulated time. A plant TimeStep of N
// seconds means N simulated seconds pass per wall-clock second, split across
// however many physics ticks fit in that second.
type Pacing struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	ClockInterval time.Duration `yaml:"clock_interval"`
}

func DefaultPacing() Pacing {
	return Pacing{
		TickInterval:  DefaultTickInterval,
		ClockInterval: DefaultClockInterval,
	}
}

func (p Pacing) Validate() error {
	if p.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", p.TickInterval)
	}
	if p.ClockInterval <= 0 {
		return fmt.Errorf("clock interval must be positive, got %v", p.ClockInterval)
	}
	return nil
}

// TickRate is the number of physics ticks per wall-clock second.
func (p Pacing) TickRate() float64 {
	return float64(time.Second) / float64(p.TickInterval)
}

// SimulatedStep is the dt each physics tick advances.
func (p Pacing) SimulatedStep(timeStep float64) float64 {
	return timeStep / p.TickRate()
}

// ClockAdvance is how far the elapsed-time counter moves per clock tick.
func (p Pacing) ClockAdvance(timeStep float64) float64 {
	return timeStep * p.ClockInterval.Seconds()
}
