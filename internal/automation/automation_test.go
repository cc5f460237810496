package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/boilersim/internal/boiler"
	"github.com/san-kum/boilersim/internal/logging"
	"github.com/san-kum/boilersim/internal/params"
	"github.com/san-kum/boilersim/internal/sim"
)

const scenarioYAML = `
name: morning-demand
description: boost the heater, then lower the target after a reset
steps:
  - at: 600
    set:
      required_temperature: 40
  - at: 0
    set:
      heater_power_max: 6
  - at: 300
    reset: true
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "morning-demand" || len(sc.Steps) != 3 {
		t.Errorf("unexpected scenario: %+v", sc)
	}

	_, err = LoadScenario(writeScenario(t, "steps:\n  - at: 0\n    set: {turbo: 1}\n"))
	if !errors.Is(err, params.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}

	if _, err := LoadScenario(writeScenario(t, "steps:\n  - at: -5\n")); err == nil {
		t.Error("expected error for negative time")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	s, err := sim.NewSession(boiler.DefaultParameters(), boiler.DefaultSetpoints())
	if err != nil {
		t.Fatal(err)
	}

	result, err := RunScenario(context.Background(), s, sc, sim.Config{Dt: 6, Duration: 1200}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Parameters().HeaterPowerMax; got != 6000 {
		t.Errorf("heater power = %f, want 6000", got)
	}
	if got := s.Setpoints().RequiredTemperature; got != 40 {
		t.Errorf("temperature setpoint = %f, want 40", got)
	}
	// The reset at 300 s restarts the engine clock.
	if got := result.Final().State.Elapsed; math.Abs(got-900) > 1e-9 {
		t.Errorf("engine elapsed = %f, want 900", got)
	}
}

func TestScriptStopsOnError(t *testing.T) {
	s, err := sim.NewSession(boiler.DefaultParameters(), boiler.DefaultSetpoints())
	if err != nil {
		t.Fatal(err)
	}
	sc := &Scenario{Steps: []ScenarioStep{
		{At: 0, Set: map[string]float64{"nope": 1}},
		{At: 0, Set: map[string]float64{"required_level": 0.5}},
	}}
	script := NewScript(s, sc, nil)
	script.Advance(0)
	if script.Err() == nil {
		t.Fatal("expected error")
	}
	if s.Setpoints().RequiredLevel != 1 {
		t.Error("steps after a failure should not fire")
	}
	if script.Done() {
		t.Error("script should not report done after a failure")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Parameters:     boiler.DefaultParameters(),
		Setpoints:      boiler.DefaultSetpoints(),
		BaseLevel:      1,
		BaseTemp:       50,
		LevelSpread:    0.03,
		TempSpread:     1,
		NumTrials:      8,
		Run:            sim.Config{Dt: 6, Duration: 3600},
		Seed:           42,
		LevelTolerance: 0.05,
		TempTolerance:  2,
	}
	results, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 8 {
		t.Fatalf("expected 8 trials, got %d", len(results))
	}
	for _, r := range results {
		if math.Abs(r.InitLevel-1) > 0.03 || math.Abs(r.InitTemp-50) > 1 {
			t.Errorf("trial %d perturbed too far: %f m %f °C", r.TrialID, r.InitLevel, r.InitTemp)
		}
	}
	if got := SettledFraction(results); got != 1 {
		t.Errorf("settled fraction = %f, want 1", got)
	}

	cold := *cfg
	cold.BaseLevel, cold.BaseTemp = 0, 0
	cold.LevelSpread, cold.TempSpread = 0, 0
	cold.Run = sim.Config{Dt: 6, Duration: 600}
	results, err = RunMonteCarlo(context.Background(), &cold)
	if err != nil {
		t.Fatal(err)
	}
	if got := SettledFraction(results); got != 0 {
		t.Errorf("a cold tank should not settle in ten minutes, got %f", got)
	}

	cold.NumTrials = 0
	if _, err := RunMonteCarlo(context.Background(), &cold); err == nil {
		t.Error("expected error for zero trials")
	}
}

func TestRunMonteCarloAppliesEngineOptions(t *testing.T) {
	p := boiler.DefaultParameters()
	p.HeaterPowerMax = 6000
	base := MonteCarloConfig{
		Parameters: p,
		Setpoints:  boiler.Setpoints{RequiredLevel: 0, RequiredTemperature: 60},
		BaseLevel:  0.2,
		BaseTemp:   35,
		NumTrials:  1,
		Run:        sim.Config{Dt: 6, Duration: 3600},
		Seed:       7,
		Logger:     logging.Discard(),
	}

	final := func(ref boiler.VolumeReference) (level, temp float64) {
		cfg := base
		cfg.EngineOptions = []boiler.Option{boiler.WithVolumeReference(ref)}
		results, err := RunMonteCarlo(context.Background(), &cfg)
		if err != nil {
			t.Fatal(err)
		}
		return results[0].Final.Level, results[0].Final.Temperature
	}

	newLevel, newTemp := final(boiler.NewTemperature)
	curLevel, _ := final(boiler.CurrentTemperature)
	if newTemp <= 40 {
		t.Fatalf("heating should cross a density bucket, final temperature %f", newTemp)
	}
	if math.Abs(newLevel-curLevel) < 5e-4 {
		t.Errorf("volume reference ignored: %f m vs %f m", newLevel, curLevel)
	}
}
