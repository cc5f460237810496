// Package water provides the physical properties of liquid water used by the
// boiler balance equations.
//
// Density is a coarse step table rather than an interpolated curve. The
// boundaries and values are fixed so that simulation runs stay comparable
// with earlier reference outputs. The [0,4) bucket is lighter than [4,10),
// so density only decreases with temperature from 4 °C upward:
//
//	rho, err := water.Density(50) // 992.2 kg/m3
package water
