package sim

import "context"

// Runner drives a session for a fixed simulated duration, feeding metrics
// and observers after every tick.
type Runner struct {
	session   *Session
	metrics   []Metric
	observers []Observer
}

func NewRunner(s *Session) *Runner {
	return &Runner{
		session:   s,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run ticks cfg.Steps() times. The first sample is the state before any
// tick. On error the partial result is returned alongside it.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{
		Samples: make([]Sample, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	result.Samples = append(result.Samples, r.session.Snapshot())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, ctx.Err()
		default:
		}

		sample, err := r.session.Tick(cfg.Dt)
		if err != nil {
			r.collect(result)
			return result, SimError{Time: sample.State.Elapsed, Step: i, Err: err}
		}

		for _, m := range r.metrics {
			m.Observe(sample)
		}
		for _, obs := range r.observers {
			obs.OnStep(sample)
		}

		result.Samples = append(result.Samples, sample)
		result.StepsTaken++
	}

	r.collect(result)
	return result, nil
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
