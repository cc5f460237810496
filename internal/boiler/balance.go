package boiler

import (
	"fmt"

	"github.com/san-kum/boilersim/internal/water"
)

// holdings is the water currently in the tank expressed as volume, mass and
// thermal energy relative to 0 °C.
type holdings struct {
	density float64 // kg/m3
	volume  float64 // m3
	mass    float64 // kg
	energy  float64 // J
}

func holdingsOf(s State, p Parameters) (holdings, error) {
	rho, err := density(s.Temperature)
	if err != nil {
		return holdings{}, err
	}
	volume := s.Level * p.CrossSectionArea
	mass := volume * rho
	return holdings{
		density: rho,
		volume:  volume,
		mass:    mass,
		energy:  p.SpecificHeatCapacity * mass * s.Temperature,
	}, nil
}

func density(celsius float64) (float64, error) {
	rho, err := water.Density(celsius)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return rho, nil
}
