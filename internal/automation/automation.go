package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/boilersim/internal/boiler"
	"github.com/san-kum/boilersim/internal/logging"
	"github.com/san-kum/boilersim/internal/params"
	"github.com/san-kum/boilersim/internal/sim"
)

// Scenario is a scripted sequence of operator actions against one session.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep fires once simulated time reaches At seconds. Set values are
// in display units, keyed like the parameter catalogue.
type ScenarioStep struct {
	At    float64            `yaml:"at"`
	Set   map[string]float64 `yaml:"set"`
	Reset bool               `yaml:"reset"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, step := range s.Steps {
		if !(step.At >= 0) {
			return fmt.Errorf("step %d: at must be non-negative, got %g", i+1, step.At)
		}
		for key := range step.Set {
			if _, err := params.Lookup(key); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	return nil
}

// Script replays a scenario against a session. It runs as a sim.Observer so
// actions land between ticks.
type Script struct {
	session *sim.Session
	steps   []ScenarioStep
	next    int
	// offset carries scenario time across engine resets.
	offset float64
	logger *slog.Logger
	err    error
}

func NewScript(s *sim.Session, scenario *Scenario, logger *slog.Logger) *Script {
	if logger == nil {
		logger = logging.Discard()
	}
	steps := append([]ScenarioStep(nil), scenario.Steps...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })
	return &Script{session: s, steps: steps, logger: logger}
}

func (sc *Script) OnStep(sample sim.Sample) {
	sc.Advance(sample.State.Elapsed)
}

// Advance fires every pending step due at the given engine time.
func (sc *Script) Advance(elapsed float64) {
	now := sc.offset + elapsed
	for sc.err == nil && sc.next < len(sc.steps) && sc.steps[sc.next].At <= now+1e-9 {
		step := sc.steps[sc.next]
		sc.next++
		if err := sc.fire(step); err != nil {
			sc.err = fmt.Errorf("scenario step at %gs: %w", step.At, err)
			sc.logger.Error("scenario step failed", "at", step.At, "err", err)
			return
		}
		if step.Reset {
			sc.offset = now
		}
	}
}

func (sc *Script) fire(step ScenarioStep) error {
	if step.Reset {
		sc.session.Reset()
		sc.logger.Info("scenario reset", "at", step.At)
	}
	if len(step.Set) == 0 {
		return nil
	}

	panel := params.Panel{Parameters: sc.session.Parameters(), Setpoints: sc.session.Setpoints()}
	keys := make([]string, 0, len(step.Set))
	for k := range step.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var err error
		if panel, err = panel.Set(k, step.Set[k]); err != nil {
			return err
		}
		sc.logger.Info("scenario set", "at", step.At, "param", k, "value", step.Set[k])
	}
	if err := sc.session.SetParameters(panel.Parameters); err != nil {
		return err
	}
	return sc.session.SetSetpoints(panel.Setpoints)
}

// Err reports the first failed step.
func (sc *Script) Err() error { return sc.err }

// Done reports whether every step has fired.
func (sc *Script) Done() bool { return sc.next == len(sc.steps) }

// RunScenario runs the session for cfg while replaying the scenario.
func RunScenario(ctx context.Context, s *sim.Session, scenario *Scenario, cfg sim.Config, ms []sim.Metric, logger *slog.Logger) (*sim.Result, error) {
	script := NewScript(s, scenario, logger)
	script.Advance(s.Snapshot().State.Elapsed)
	if err := script.Err(); err != nil {
		return nil, err
	}

	r := sim.NewRunner(s)
	for _, m := range ms {
		r.AddMetric(m)
	}
	r.AddObserver(script)

	result, err := r.Run(ctx, cfg)
	if err != nil {
		return result, err
	}
	return result, script.Err()
}

// MonteCarloConfig perturbs the initial tank state around a base point.
type MonteCarloConfig struct {
	Parameters  boiler.Parameters
	Setpoints   boiler.Setpoints
	BaseLevel   float64
	BaseTemp    float64
	LevelSpread float64
	TempSpread  float64
	NumTrials   int
	Run         sim.Config
	Seed        int64
	// EngineOptions apply to every trial before its perturbed initial state.
	EngineOptions []boiler.Option
	Logger        *slog.Logger
	// Tolerances for a trial to count as settled at the end of the run.
	LevelTolerance float64
	TempTolerance  float64
}

type MonteCarloResult struct {
	TrialID   int
	InitLevel float64
	InitTemp  float64
	Final     boiler.State
	Settled   bool
}

// RunMonteCarlo runs NumTrials sessions from randomly perturbed initial
// states and reports which ones end within tolerance of the setpoints.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.NumTrials)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		level := math.Max(cfg.BaseLevel+(rng.Float64()-0.5)*2*cfg.LevelSpread, 0)
		temp := math.Max(cfg.BaseTemp+(rng.Float64()-0.5)*2*cfg.TempSpread, 0)

		opts := append(append([]boiler.Option(nil), cfg.EngineOptions...),
			boiler.WithInitialLevel(level), boiler.WithInitialTemperature(temp))
		sessionOpts := []sim.SessionOption{sim.WithEngineOptions(opts...)}
		if cfg.Logger != nil {
			sessionOpts = append(sessionOpts, sim.WithLogger(cfg.Logger))
		}

		s, err := sim.NewSession(cfg.Parameters, cfg.Setpoints, sessionOpts...)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		result, err := sim.NewRunner(s).Run(ctx, cfg.Run)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		final := result.Final().State
		settled := math.Abs(final.Level-cfg.Setpoints.RequiredLevel) <= cfg.LevelTolerance &&
			math.Abs(final.Temperature-cfg.Setpoints.RequiredTemperature) <= cfg.TempTolerance

		results = append(results, MonteCarloResult{
			TrialID:   trial,
			InitLevel: level,
			InitTemp:  temp,
			Final:     final,
			Settled:   settled,
		})
	}

	return results, nil
}

// SettledFraction is the share of trials that settled.
func SettledFraction(results []MonteCarloResult) float64 {
	if len(results) == 0 {
		return 0
	}
	n := 0
	for _, r := range results {
		if r.Settled {
			n++
		}
	}
	return float64(n) / float64(len(results))
}
