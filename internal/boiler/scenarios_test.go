package boiler_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/boilersim/internal/boiler"
)

var _ = Describe("Engine and controller", func() {
	var (
		params boiler.Parameters
		ctrl   *boiler.Controller
		eng    *boiler.Engine
	)

	BeforeEach(func() {
		params = boiler.Parameters{
			CrossSectionArea:       10,
			InflowMaxRate:          0.01,
			InflowTemperature:      10,
			HeaterPowerMax:         5000,
			HeaterEfficiency:       0.9,
			EnergyDrainCoefficient: 1,
			SpecificHeatCapacity:   4200,
			TimeStep:               60,
		}
		ctrl = boiler.NewController()
		var err error
		eng, err = boiler.NewEngine(params)
		Expect(err).NotTo(HaveOccurred())
	})

	tick := func(sp boiler.Setpoints, dt float64) boiler.Commands {
		cmd, err := ctrl.Compute(eng.State(), sp, eng.Parameters(), dt)
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.Apply(cmd)).To(Succeed())
		Expect(eng.Step(dt)).To(Succeed())
		return cmd
	}

	Context("filling a cold empty tank", func() {
		sp := boiler.Setpoints{RequiredLevel: 1, RequiredTemperature: 50}

		It("runs the pump at capacity", func() {
			tick(sp, params.TimeStep)
			Expect(eng.State().Inflow).To(Equal(params.InflowMaxRate))
		})

		It("raises the level by one step of full inflow", func() {
			tick(sp, params.TimeStep)
			want := params.InflowMaxRate * params.TimeStep / params.CrossSectionArea
			Expect(eng.State().Level).To(BeNumerically("~", want, 1e-4))
		})

		It("saturates the heater exactly at its ceiling", func() {
			cmd := tick(sp, params.TimeStep)
			Expect(cmd.Power).To(Equal(params.HeaterPowerMax))
			Expect(cmd.PowerSaturated(params)).To(BeTrue())
		})

		It("warms the incoming water above the inflow temperature", func() {
			tick(sp, params.TimeStep)
			Expect(eng.State().Temperature).To(BeNumerically(">", params.InflowTemperature))
		})

		It("eventually reaches the level setpoint", func() {
			for i := 0; i < 400; i++ {
				tick(sp, params.TimeStep)
			}
			Expect(eng.State().Level).To(BeNumerically("~", sp.RequiredLevel, 0.02))
		})
	})

	Context("draining more than the tank holds", func() {
		BeforeEach(func() {
			params.InflowMaxRate = 0
			var err error
			eng, err = boiler.NewEngine(params, boiler.WithInitialLevel(0.01), boiler.WithInitialTemperature(40))
			Expect(err).NotTo(HaveOccurred())
		})

		It("caps the outflow at the available volume", func() {
			sp := boiler.Setpoints{RequiredTemperature: 40, RequiredOutflow: 0.01}
			cmd := tick(sp, params.TimeStep)
			Expect(cmd.Outflow * params.TimeStep).To(BeNumerically("<=", 0.01*params.CrossSectionArea+1e-12))
			Expect(eng.State().Level).To(BeNumerically(">=", 0))
			Expect(eng.State().Level).To(BeNumerically("<", 1e-9))
		})

		It("keeps a drained tank non-negative", func() {
			sp := boiler.Setpoints{RequiredTemperature: 0, RequiredOutflow: 0.01}
			params.HeaterPowerMax = 0
			Expect(eng.SetParameters(params)).To(Succeed())
			for i := 0; i < 3; i++ {
				tick(sp, params.TimeStep)
			}
			Expect(eng.State().Level).To(BeNumerically("<", 1e-9))
			Expect(eng.State().Temperature).To(BeNumerically(">=", 0))
		})
	})

	Context("under arbitrary operator input", func() {
		It("never violates the state invariants", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 2000; i++ {
				if i%50 == 0 {
					params.HeaterPowerMax = rng.Float64() * 6000
					params.InflowMaxRate = rng.Float64() * 0.02
					params.EnergyDrainCoefficient = rng.Float64() * 500
					Expect(eng.SetParameters(params)).To(Succeed())
				}
				sp := boiler.Setpoints{
					RequiredLevel:       rng.Float64() * 2,
					RequiredTemperature: rng.Float64() * 90,
					RequiredOutflow:     rng.Float64() * 0.02,
				}
				dt := 1 + rng.Float64()*120
				tick(sp, dt)

				s := eng.State()
				Expect(s.Level).To(BeNumerically(">=", 0))
				Expect(s.Temperature).To(BeNumerically(">=", 0))
				Expect(s.Inflow).To(BeNumerically(">=", 0))
				Expect(s.Inflow).To(BeNumerically("<=", params.InflowMaxRate))
				Expect(s.Outflow).To(BeNumerically(">=", 0))
				Expect(s.Power).To(BeNumerically(">=", 0))
				Expect(s.Power).To(BeNumerically("<=", params.HeaterPowerMax))
			}
		})
	})

	Context("reset", func() {
		It("is idempotent and keeps parameters", func() {
			tick(boiler.DefaultSetpoints(), params.TimeStep)
			eng.Reset()
			first := eng.State()
			eng.Reset()
			Expect(eng.State()).To(Equal(first))
			Expect(first).To(Equal(boiler.State{}))
			Expect(eng.Parameters()).To(Equal(params))
		})
	})
})
