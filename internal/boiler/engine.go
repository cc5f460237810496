package boiler

import "math"

// VolumeReference selects which temperature's density converts the new mass
// back into a water level at the end of a step.
type VolumeReference int

const (
	// NewTemperature uses the density at the temperature the step produced.
	NewTemperature VolumeReference = iota
	// CurrentTemperature uses the density at the pre-step temperature, which
	// reproduces the historical reference outputs.
	CurrentTemperature
)

func (r VolumeReference) String() string {
	switch r {
	case NewTemperature:
		return "new"
	case CurrentTemperature:
		return "current"
	default:
		return "unknown"
	}
}

// residualMass is the fraction of the tank's pre-step mass below which the
// remaining water counts as none.
const residualMass = 1e-9

// Engine owns the boiler state and advances it one step at a time.
type Engine struct {
	params    Parameters
	state     State
	volumeRef VolumeReference
}

type Option func(*Engine)

// WithInitialLevel starts the tank filled to the given level in metres.
func WithInitialLevel(level float64) Option {
	return func(e *Engine) { e.state.Level = level }
}

// WithInitialTemperature starts the tank at the given temperature in °C.
func WithInitialTemperature(celsius float64) Option {
	return func(e *Engine) { e.state.Temperature = celsius }
}

func WithVolumeReference(ref VolumeReference) Option {
	return func(e *Engine) { e.volumeRef = ref }
}

func NewEngine(p Parameters, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{params: p}
	for _, opt := range opts {
		opt(e)
	}
	if err := nonNegative("initial level", e.state.Level); err != nil {
		return nil, err
	}
	if err := nonNegative("initial temperature", e.state.Temperature); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) State() State               { return e.state }
func (e *Engine) Parameters() Parameters     { return e.params }
func (e *Engine) VolumeRef() VolumeReference { return e.volumeRef }

// SetParameters replaces the plant parameters. Actuator values above a
// lowered ceiling are saturated to it.
func (e *Engine) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.params = p
	e.state.Inflow = math.Min(e.state.Inflow, p.InflowMaxRate)
	e.state.Power = math.Min(e.state.Power, p.HeaterPowerMax)
	return nil
}

// Apply stores actuator commands for the next step, saturating inflow and
// power to their ceilings. Negative commands are rejected.
func (e *Engine) Apply(c Commands) error {
	if err := c.validate(); err != nil {
		return &StepError{Op: "apply", Elapsed: e.state.Elapsed, State: e.state, Wrapped: err}
	}
	e.state.Inflow = math.Min(c.Inflow, e.params.InflowMaxRate)
	e.state.Outflow = c.Outflow
	e.state.Power = math.Min(c.Power, e.params.HeaterPowerMax)
	return nil
}

// Step advances level and temperature by dt seconds using the actuator
// values already applied. On error the state is left untouched.
func (e *Engine) Step(dt float64) error {
	next, err := e.balance(dt)
	if err != nil {
		return &StepError{Op: "step", Elapsed: e.state.Elapsed, State: e.state, Wrapped: err}
	}
	e.state = next
	return nil
}

// Reset returns the engine to a cold, empty tank. Parameters are kept.
func (e *Engine) Reset() {
	e.state = State{}
}

func (e *Engine) balance(dt float64) (State, error) {
	if err := positive("dt", dt); err != nil {
		return State{}, err
	}
	p, s := e.params, e.state
	if err := p.Validate(); err != nil {
		return State{}, err
	}

	cur, err := holdingsOf(s, p)
	if err != nil {
		return State{}, err
	}
	rhoIn, err := density(p.InflowTemperature)
	if err != nil {
		return State{}, err
	}
	c := p.SpecificHeatCapacity

	suppliedMass := s.Inflow * dt * rhoIn
	suppliedEnergy := c*suppliedMass*p.InflowTemperature + s.Power*p.HeaterEfficiency*dt

	drainedMass := s.Outflow * dt * cur.density
	drainedEnergy := c*drainedMass*s.Temperature + p.EnergyDrainCoefficient*dt

	newMass := math.Max(suppliedMass+cur.mass-drainedMass, 0)
	// Draining to empty can leave rounding residue; dividing heater energy by
	// it would report a runaway temperature.
	if newMass < residualMass*(cur.mass+suppliedMass) {
		newMass = 0
	}
	newEnergy := math.Max(cur.energy+suppliedEnergy-drainedEnergy, 0)

	newTemperature := 0.0
	if newMass != 0 {
		newTemperature = newEnergy / (c * newMass)
	}

	refTemperature := newTemperature
	if e.volumeRef == CurrentTemperature {
		refTemperature = s.Temperature
	}
	rhoRef, err := density(refTemperature)
	if err != nil {
		return State{}, err
	}

	s.Level = newMass / rhoRef / p.CrossSectionArea
	s.Temperature = newTemperature
	s.Elapsed += dt
	return s, nil
}
