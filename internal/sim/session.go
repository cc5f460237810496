package sim

import (
	"log/slog"
	"sync"

	"github.com/san-kum/boilersim/internal/boiler"
	"github.com/san-kum/boilersim/internal/logging"
)

// Session is the host-facing wrapper around an engine and its controller.
// Operator edits and ticks are serialised so an edit lands either before or
// after a tick, never in the middle of one.
type Session struct {
	mu        sync.Mutex
	engine    *boiler.Engine
	ctrl      *boiler.Controller
	setpoints boiler.Setpoints
	last      boiler.Commands
	lastDt    float64
	logger    *slog.Logger
	saturated bool
}

type SessionOption func(*sessionOptions)

type sessionOptions struct {
	logger *slog.Logger
	engine []boiler.Option
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOptions) { o.logger = l }
}

// WithEngineOptions forwards initial-state and model options to the engine.
func WithEngineOptions(opts ...boiler.Option) SessionOption {
	return func(o *sessionOptions) { o.engine = append(o.engine, opts...) }
}

func NewSession(p boiler.Parameters, sp boiler.Setpoints, opts ...SessionOption) (*Session, error) {
	o := sessionOptions{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	eng, err := boiler.NewEngine(p, o.engine...)
	if err != nil {
		return nil, err
	}
	return &Session{
		engine:    eng,
		ctrl:      boiler.NewController(),
		setpoints: sp,
		logger:    o.logger,
	}, nil
}

// Tick computes fresh commands for the current state, applies them and
// advances the engine by dt simulated seconds.
func (s *Session) Tick(dt float64) (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := s.engine.Parameters()
	cmd, err := s.ctrl.Compute(s.engine.State(), s.setpoints, params, dt)
	if err != nil {
		s.logger.Warn("compute failed", "err", err)
		return s.sampleLocked(), err
	}
	if err := s.engine.Apply(cmd); err != nil {
		s.logger.Warn("apply failed", "err", err)
		return s.sampleLocked(), err
	}
	if err := s.engine.Step(dt); err != nil {
		s.logger.Warn("step failed", "err", err)
		return s.sampleLocked(), err
	}
	s.last, s.lastDt = cmd, dt

	if sat := cmd.PowerSaturated(params); sat != s.saturated {
		s.saturated = sat
		s.logger.Debug("heater saturation changed", "saturated", sat, "power_w", cmd.Power, "elapsed_s", s.engine.State().Elapsed)
	}
	return s.sampleLocked(), nil
}

func (s *Session) SetParameters(p boiler.Parameters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.SetParameters(p); err != nil {
		return err
	}
	s.logger.Debug("parameters updated", "time_step_s", p.TimeStep, "heater_power_max_w", p.HeaterPowerMax)
	return nil
}

func (s *Session) SetSetpoints(sp boiler.Setpoints) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setpoints = sp
	s.logger.Debug("setpoints updated", "level_m", sp.RequiredLevel, "temperature_c", sp.RequiredTemperature, "outflow_m3s", sp.RequiredOutflow)
	return nil
}

// Reset empties the tank. Parameters and setpoints are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
	s.last, s.lastDt, s.saturated = boiler.Commands{}, 0, false
	s.logger.Debug("session reset")
}

// Snapshot returns the latest state together with the inputs that produced it.
func (s *Session) Snapshot() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleLocked()
}

func (s *Session) Parameters() boiler.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Parameters()
}

func (s *Session) Setpoints() boiler.Setpoints {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setpoints
}

func (s *Session) sampleLocked() Sample {
	return Sample{
		State:     s.engine.State(),
		Commands:  s.last,
		Params:    s.engine.Parameters(),
		Setpoints: s.setpoints,
		Dt:        s.lastDt,
	}
}
