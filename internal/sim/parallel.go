package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/boilersim/internal/boiler"
	"github.com/san-kum/boilersim/internal/params"
)

// Variant is one configuration in a sweep.
type Variant struct {
	Label      string
	Parameters boiler.Parameters
	Setpoints  boiler.Setpoints
}

type SweepResult struct {
	Variant Variant
	Result  *Result
}

// VaryPanel builds one variant per value of key, starting from base. Values
// are in display units and are clamped to the operator range.
func VaryPanel(base params.Panel, key string, values []float64) ([]Variant, error) {
	d, err := params.Lookup(key)
	if err != nil {
		return nil, err
	}
	out := make([]Variant, 0, len(values))
	for _, v := range values {
		p, err := base.Set(key, v)
		if err != nil {
			return nil, err
		}
		shown, _ := p.Get(key)
		out = append(out, Variant{
			Label:      fmt.Sprintf("%s=%g%s", d.Key, shown, d.Unit),
			Parameters: p.Parameters,
			Setpoints:  p.Setpoints,
		})
	}
	return out, nil
}

// Sweep runs every variant in its own session. Each run gets a fresh set of
// metrics from newMetrics. Results keep the order of variants.
func Sweep(ctx context.Context, variants []Variant, cfg Config, newMetrics func() []Metric, opts ...SessionOption) ([]SweepResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(variants))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, v := range variants {
		i, v := i, v
		g.Go(func() error {
			s, err := NewSession(v.Parameters, v.Setpoints, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", v.Label, err)
			}
			r := NewRunner(s)
			if newMetrics != nil {
				for _, m := range newMetrics() {
					r.AddMetric(m)
				}
			}
			res, err := r.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", v.Label, err)
			}
			results[i] = SweepResult{Variant: v, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Best returns the result with the lowest value of metric. ok is false when
// no result carries the metric.
func Best(results []SweepResult, metric string) (best SweepResult, ok bool) {
	lowest := math.Inf(1)
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		v, has := r.Result.Metrics[metric]
		if !has || math.IsNaN(v) {
			continue
		}
		if v < lowest {
			lowest, best, ok = v, r, true
		}
	}
	return best, ok
}
