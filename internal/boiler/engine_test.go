package boiler

import (
	"errors"
	"math"
	"testing"
)

func scenarioParameters() Parameters {
	return Parameters{
		CrossSectionArea:       10,
		InflowMaxRate:          0.01,
		InflowTemperature:      10,
		HeaterPowerMax:         5000,
		HeaterEfficiency:       0.9,
		EnergyDrainCoefficient: 1,
		SpecificHeatCapacity:   4200,
		TimeStep:               60,
	}
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
		valid  bool
	}{
		{"defaults", func(p *Parameters) {}, true},
		{"efficiency one", func(p *Parameters) { p.HeaterEfficiency = 1 }, true},
		{"zero inflow capacity", func(p *Parameters) { p.InflowMaxRate = 0 }, true},
		{"zero area", func(p *Parameters) { p.CrossSectionArea = 0 }, false},
		{"negative area", func(p *Parameters) { p.CrossSectionArea = -1 }, false},
		{"zero time step", func(p *Parameters) { p.TimeStep = 0 }, false},
		{"zero efficiency", func(p *Parameters) { p.HeaterEfficiency = 0 }, false},
		{"efficiency above one", func(p *Parameters) { p.HeaterEfficiency = 1.01 }, false},
		{"negative inflow temperature", func(p *Parameters) { p.InflowTemperature = -1 }, false},
		{"negative drain", func(p *Parameters) { p.EnergyDrainCoefficient = -1 }, false},
		{"nan power", func(p *Parameters) { p.HeaterPowerMax = math.NaN() }, false},
		{"infinite area", func(p *Parameters) { p.CrossSectionArea = math.Inf(1) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			err := p.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(DefaultParameters(), WithInitialLevel(0.5), WithInitialTemperature(20))
	if err != nil {
		t.Fatalf("new engine failed: %v", err)
	}
	s := eng.State()
	if s.Level != 0.5 || s.Temperature != 20 {
		t.Errorf("expected level 0.5 temperature 20, got %v", s)
	}
	if s.Inflow != 0 || s.Outflow != 0 || s.Power != 0 || s.Elapsed != 0 {
		t.Errorf("expected idle actuators, got %v", s)
	}

	if _, err := NewEngine(DefaultParameters(), WithInitialTemperature(-1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative temperature, got %v", err)
	}
	bad := DefaultParameters()
	bad.TimeStep = 0
	if _, err := NewEngine(bad); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero time step, got %v", err)
	}
}

func TestStepConservesMassWhenIdle(t *testing.T) {
	p := scenarioParameters()
	p.EnergyDrainCoefficient = 0
	for _, ref := range []VolumeReference{NewTemperature, CurrentTemperature} {
		eng, err := NewEngine(p, WithInitialLevel(1.2), WithInitialTemperature(47), WithVolumeReference(ref))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 10; i++ {
			if err := eng.Step(p.TimeStep); err != nil {
				t.Fatalf("step failed: %v", err)
			}
		}
		s := eng.State()
		if math.Abs(s.Level-1.2) > 1e-9 {
			t.Errorf("%s: expected level 1.2, got %.12f", ref, s.Level)
		}
		if math.Abs(s.Temperature-47) > 1e-9 {
			t.Errorf("%s: expected temperature 47, got %.12f", ref, s.Temperature)
		}
		if s.Elapsed != 600 {
			t.Errorf("%s: expected elapsed 600, got %g", ref, s.Elapsed)
		}
	}
}

func TestStepEmptyTankStaysCold(t *testing.T) {
	eng, err := NewEngine(scenarioParameters())
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Step(60); err != nil {
		t.Fatal(err)
	}
	s := eng.State()
	if s.Level != 0 || s.Temperature != 0 {
		t.Errorf("expected empty cold tank, got level %g temperature %g", s.Level, s.Temperature)
	}
}

func TestStepHeaterOnlyWarmsWater(t *testing.T) {
	p := scenarioParameters()
	p.EnergyDrainCoefficient = 0
	eng, err := NewEngine(p, WithInitialLevel(0.1), WithInitialTemperature(20))
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Apply(Commands{Power: 5000}); err != nil {
		t.Fatal(err)
	}
	if err := eng.Step(60); err != nil {
		t.Fatal(err)
	}

	mass := 0.1 * 10 * 998.2
	want := 20 + 5000*0.9*60/(4200*mass)
	if got := eng.State().Temperature; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected temperature %.9f, got %.9f", want, got)
	}
}

func TestStepRejectsBadDtWithoutMutation(t *testing.T) {
	eng, err := NewEngine(scenarioParameters(), WithInitialLevel(1), WithInitialTemperature(30))
	if err != nil {
		t.Fatal(err)
	}
	before := eng.State()

	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := eng.Step(dt)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("dt=%g: expected ErrInvalidArgument, got %v", dt, err)
		}
		var se *StepError
		if !errors.As(err, &se) || se.Op != "step" {
			t.Errorf("dt=%g: expected *StepError for step, got %T", dt, err)
		}
		if eng.State() != before {
			t.Errorf("dt=%g: state mutated on error", dt)
		}
	}
}

func TestApplySaturatesAndRejects(t *testing.T) {
	p := scenarioParameters()
	eng, err := NewEngine(p)
	if err != nil {
		t.Fatal(err)
	}

	if err := eng.Apply(Commands{Inflow: 1, Outflow: 0.002, Power: 1e9}); err != nil {
		t.Fatal(err)
	}
	s := eng.State()
	if s.Inflow != p.InflowMaxRate {
		t.Errorf("expected inflow %g, got %g", p.InflowMaxRate, s.Inflow)
	}
	if s.Power != p.HeaterPowerMax {
		t.Errorf("expected power %g, got %g", p.HeaterPowerMax, s.Power)
	}
	if s.Outflow != 0.002 {
		t.Errorf("expected outflow 0.002, got %g", s.Outflow)
	}

	if err := eng.Apply(Commands{Inflow: -0.1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative inflow, got %v", err)
	}
	if eng.State() != s {
		t.Error("rejected command mutated state")
	}
}

func TestSetParametersSaturatesActuators(t *testing.T) {
	p := scenarioParameters()
	eng, err := NewEngine(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Apply(Commands{Inflow: 0.01, Power: 5000}); err != nil {
		t.Fatal(err)
	}

	lower := p
	lower.HeaterPowerMax = 1000
	lower.InflowMaxRate = 0.004
	if err := eng.SetParameters(lower); err != nil {
		t.Fatal(err)
	}
	s := eng.State()
	if s.Power != 1000 || s.Inflow != 0.004 {
		t.Errorf("expected saturated actuators 0.004/1000, got %g/%g", s.Inflow, s.Power)
	}

	bad := lower
	bad.HeaterEfficiency = 2
	if err := eng.SetParameters(bad); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if eng.Parameters() != lower {
		t.Error("rejected parameters were stored")
	}
}

func TestResetIdempotent(t *testing.T) {
	eng, err := NewEngine(scenarioParameters(), WithInitialLevel(1), WithInitialTemperature(60))
	if err != nil {
		t.Fatal(err)
	}
	_ = eng.Apply(Commands{Inflow: 0.01, Power: 100})
	_ = eng.Step(60)

	eng.Reset()
	first := eng.State()
	eng.Reset()
	second := eng.State()

	if first != (State{}) || second != (State{}) {
		t.Errorf("expected zero state after reset, got %v then %v", first, second)
	}
	if eng.Parameters() != scenarioParameters() {
		t.Error("reset changed parameters")
	}
}

func TestControllerCapsOutflowByVolume(t *testing.T) {
	p := scenarioParameters()
	p.InflowMaxRate = 0
	ctrl := NewController()
	s := State{Level: 0.01, Temperature: 30}
	sp := Setpoints{RequiredLevel: 0, RequiredTemperature: 40, RequiredOutflow: 0.01}

	cmd, err := ctrl.Compute(s, sp, p, 60)
	if err != nil {
		t.Fatal(err)
	}
	volume := s.Level * p.CrossSectionArea
	if math.Abs(cmd.Outflow-volume/60) > 1e-15 {
		t.Errorf("expected outflow %g, got %g", volume/60, cmd.Outflow)
	}
}

func TestControllerIdleAtSetpoint(t *testing.T) {
	p := scenarioParameters()
	p.EnergyDrainCoefficient = 0
	ctrl := NewController()
	s := State{Level: 1, Temperature: 50}
	sp := Setpoints{RequiredLevel: 1, RequiredTemperature: 50}

	cmd, err := ctrl.Compute(s, sp, p, 60)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Inflow != 0 || cmd.Outflow != 0 {
		t.Errorf("expected no flow at setpoint, got %+v", cmd)
	}
	if cmd.Power > 1e-6 {
		t.Errorf("expected no heating at setpoint, got %g W", cmd.Power)
	}
}

func TestControllerCompensatesDrain(t *testing.T) {
	p := scenarioParameters()
	p.EnergyDrainCoefficient = 90
	ctrl := NewController()
	s := State{Level: 1, Temperature: 50}
	sp := Setpoints{RequiredLevel: 1, RequiredTemperature: 50}

	cmd, err := ctrl.Compute(s, sp, p, 60)
	if err != nil {
		t.Fatal(err)
	}
	if want := 90 / 0.9; math.Abs(cmd.Power-want) > 1e-6 {
		t.Errorf("expected %g W to offset drain, got %g", want, cmd.Power)
	}
}

func TestControllerRejectsInvalidInput(t *testing.T) {
	ctrl := NewController()
	p := scenarioParameters()

	tests := []struct {
		name string
		s    State
		sp   Setpoints
		p    Parameters
		dt   float64
	}{
		{"zero dt", State{}, DefaultSetpoints(), p, 0},
		{"negative setpoint", State{}, Setpoints{RequiredLevel: -1}, p, 60},
		{"negative temperature", State{Level: 1, Temperature: -3}, DefaultSetpoints(), p, 60},
		{"bad efficiency", State{}, DefaultSetpoints(), Parameters{CrossSectionArea: 1, SpecificHeatCapacity: 4200, TimeStep: 1}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctrl.Compute(tt.s, tt.sp, tt.p, tt.dt)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestCommandsSaturated(t *testing.T) {
	p := scenarioParameters()
	c := Commands{Inflow: 0.01, Power: 10}
	if !c.InflowSaturated(p) {
		t.Error("expected inflow saturated")
	}
	if c.PowerSaturated(p) {
		t.Error("expected power not saturated")
	}
}

func TestStepErrorMessage(t *testing.T) {
	err := &StepError{Op: "step", Elapsed: 120, Wrapped: ErrInvalidArgument}
	expected := "step (t=120.0s): boiler: invalid argument"
	if err.Error() != expected {
		t.Errorf("StepError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestStepDrainToEmptyLeavesNoResidue(t *testing.T) {
	p := scenarioParameters()
	p.InflowMaxRate = 0
	sp := Setpoints{RequiredLevel: 0, RequiredTemperature: 50, RequiredOutflow: 0.05}

	for _, level := range []float64{0.0031000000000000003, 0.0017, 0.0123} {
		eng, err := NewEngine(p, WithInitialLevel(level), WithInitialTemperature(41.7))
		if err != nil {
			t.Fatal(err)
		}
		cmd, err := NewController().Compute(eng.State(), sp, p, 60)
		if err != nil {
			t.Fatal(err)
		}
		if err := eng.Apply(cmd); err != nil {
			t.Fatal(err)
		}
		if err := eng.Step(60); err != nil {
			t.Fatal(err)
		}
		s := eng.State()
		if s.Level != 0 || s.Temperature != 0 {
			t.Errorf("level %g: expected empty cold tank, got level %g temperature %g", level, s.Level, s.Temperature)
		}
	}
}
