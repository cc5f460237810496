package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/boilersim/internal/boiler"
	"github.com/san-kum/boilersim/internal/sim"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case CSV, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (valid: csv, json)", s)
	}
}

// Report is one batch run ready to be written out.
type Report struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Preset     string             `json:"preset,omitempty"`
	Parameters boiler.Parameters  `json:"parameters"`
	Setpoints  boiler.Setpoints   `json:"setpoints"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Samples    []sim.Sample       `json:"samples"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewReport(preset string, cfg sim.Config, p boiler.Parameters, sp boiler.Setpoints, result *sim.Result) *Report {
	return &Report{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Preset:     preset,
		Parameters: p,
		Setpoints:  sp,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      result.StepsTaken,
		Samples:    result.Samples,
		Metrics:    result.Metrics,
	}
}

func Write(w io.Writer, f Format, r *Report) error {
	switch f {
	case CSV:
		return WriteCSV(w, r)
	case JSON:
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Header is the CSV column layout. Flows are in l/s.
var Header = []string{
	"run_id", "elapsed_s", "level_m", "temperature_c",
	"inflow_ls", "outflow_ls", "power_w", "dt_s",
}

func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, s := range r.Samples {
		row := []string{
			r.ID,
			formatFloat(s.State.Elapsed),
			formatFloat(s.State.Level),
			formatFloat(s.State.Temperature),
			formatFloat(s.State.Inflow * 1000),
			formatFloat(s.State.Outflow * 1000),
			formatFloat(s.State.Power),
			formatFloat(s.Dt),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
