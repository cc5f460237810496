package metrics

import (
	"github.com/san-kum/boilersim/internal/sim"
	"github.com/san-kum/boilersim/internal/water"
)

const joulesPerKWh = 3.6e6

// HeaterEnergy is the electrical energy drawn by the heater in kWh.
type HeaterEnergy struct {
	name   string
	joules float64
}

func NewHeaterEnergy() *HeaterEnergy {
	return &HeaterEnergy{name: "heater_energy_kwh"}
}

func (h *HeaterEnergy) Name() string { return h.name }

func (h *HeaterEnergy) Observe(s sim.Sample) {
	h.joules += s.State.Power * s.Dt
}

func (h *HeaterEnergy) Value() float64 { return h.joules / joulesPerKWh }

func (h *HeaterEnergy) Reset() { h.joules = 0 }

// StoredEnergy is the thermal energy held in the tank at the last observed
// sample, in kWh above 0 °C.
type StoredEnergy struct {
	name   string
	joules float64
}

func NewStoredEnergy() *StoredEnergy {
	return &StoredEnergy{name: "stored_energy_kwh"}
}

func (e *StoredEnergy) Name() string { return e.name }

func (e *StoredEnergy) Observe(s sim.Sample) {
	rho, err := water.Density(s.State.Temperature)
	if err != nil {
		return
	}
	mass := s.State.Level * s.Params.CrossSectionArea * rho
	e.joules = s.Params.SpecificHeatCapacity * mass * s.State.Temperature
}

func (e *StoredEnergy) Value() float64 { return e.joules / joulesPerKWh }

func (e *StoredEnergy) Reset() { e.joules = 0 }
