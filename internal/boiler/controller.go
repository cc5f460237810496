package boiler

import "math"

// Controller is a single-step feed-forward controller. It asks for whatever
// inflow and heater power would reach the setpoints within one step and
// saturates the answer at the plant's ceilings. It keeps no state.
type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

// Compute returns the actuator commands for the next step of length dt.
func (c *Controller) Compute(s State, sp Setpoints, p Parameters, dt float64) (Commands, error) {
	cmd, err := compute(s, sp, p, dt)
	if err != nil {
		return Commands{}, &StepError{Op: "compute", Elapsed: s.Elapsed, State: s, Wrapped: err}
	}
	return cmd, nil
}

func compute(s State, sp Setpoints, p Parameters, dt float64) (Commands, error) {
	if err := positive("dt", dt); err != nil {
		return Commands{}, err
	}
	if err := p.Validate(); err != nil {
		return Commands{}, err
	}
	if err := sp.Validate(); err != nil {
		return Commands{}, err
	}
	if err := nonNegative("level", s.Level); err != nil {
		return Commands{}, err
	}

	cur, err := holdingsOf(s, p)
	if err != nil {
		return Commands{}, err
	}
	rhoRequired, err := density(sp.RequiredTemperature)
	if err != nil {
		return Commands{}, err
	}
	rhoIn, err := density(p.InflowTemperature)
	if err != nil {
		return Commands{}, err
	}
	heat := p.SpecificHeatCapacity

	requiredMass := sp.RequiredLevel * p.CrossSectionArea * rhoRequired
	requiredEnergy := heat * math.Max(requiredMass, cur.mass) * sp.RequiredTemperature

	// Outflow can never take more than the tank holds.
	outflowVolume := sp.RequiredOutflow * dt
	outflowMass := outflowVolume * cur.density
	actualOutflowVolume := math.Min(outflowVolume, cur.volume)
	actualOutflowEnergy := heat * actualOutflowVolume * cur.density * s.Temperature
	actualOutflow := actualOutflowVolume / dt

	requiredInflowMass := math.Max(requiredMass-cur.mass+outflowMass, 0)
	requiredInflow := requiredInflowMass / rhoIn / dt
	actualInflow := math.Min(requiredInflow, p.InflowMaxRate)
	actualInflowEnergy := heat * actualInflow * dt * rhoIn * p.InflowTemperature

	requiredIncome := math.Max(
		requiredEnergy-cur.energy+actualOutflowEnergy-actualInflowEnergy+p.EnergyDrainCoefficient*dt,
		0,
	)
	requiredPower := requiredIncome / dt / p.HeaterEfficiency
	actualPower := math.Min(requiredPower, p.HeaterPowerMax)

	return Commands{
		Inflow:  actualInflow,
		Outflow: actualOutflow,
		Power:   actualPower,
	}, nil
}
