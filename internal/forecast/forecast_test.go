package forecast_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/forecast"
	"github.com/san-kum/satsim/internal/integrators"
)

func linear(id string, r float64, pos, vel dynamo.Vec3) dynamo.Body {
	b, err := dynamo.NewLinear(id, r, pos, vel)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func orbital(id string, r, orbit, w, phase float64) dynamo.Body {
	b, err := dynamo.NewOrbital(id, r, orbit, w, phase)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func pairs(events []dynamo.Event) [][3]any {
	out := make([][3]any, len(events))
	for i, ev := range events {
		out[i] = [3]any{ev.A, ev.B, ev.Step}
	}
	return out
}

var _ = Describe("Forecaster", func() {
	var (
		f      *forecast.Forecaster
		bodies []dynamo.Body
	)

	Context("with three console satellites", func() {
		BeforeEach(func() {
			f = forecast.New(integrators.NewEuler(1))
			bodies = []dynamo.Body{
				linear("S1", 1, dynamo.Vec3{}, dynamo.Vec3{}),
				linear("S2", 1, dynamo.Vec3{X: 10}, dynamo.Vec3{X: -3}),
				linear("S3", 1, dynamo.Vec3{Z: 11.5}, dynamo.Vec3{Z: -2}),
			}
		})

		It("reports only the first hit in stop-at-first mode", func() {
			report := f.Predict(bodies, 10, forecast.StopAtFirst)

			Expect(pairs(report.Events)).To(Equal([][3]any{{"S1", "S2", 3}}))
			Expect(report.Summary()).To(Equal("Collision predicted between S1 and S2 at time step 3"))
		})

		It("reports every step and pair in scan-all mode", func() {
			report := f.Predict(bodies, 10, forecast.ScanAll)

			Expect(pairs(report.Events)).To(Equal([][3]any{
				{"S1", "S2", 3},
				{"S1", "S3", 5},
				{"S1", "S3", 6},
			}))
		})

		It("reports nothing when the horizon ends before the first hit", func() {
			report := f.Predict(bodies, 2, forecast.StopAtFirst)

			Expect(report.Collided()).To(BeFalse())
			Expect(report.Summary()).To(Equal("No collision predicted in 2 time steps."))
		})

		It("leaves the stored bodies untouched", func() {
			before := make([]dynamo.Body, len(bodies))
			copy(before, bodies)

			f.Predict(bodies, 50, forecast.ScanAll)

			Expect(bodies).To(Equal(before))
		})

		It("returns an empty report for a non-positive horizon", func() {
			Expect(f.Predict(bodies, 0, forecast.ScanAll).Events).To(BeEmpty())
			Expect(f.Predict(bodies, -4, forecast.StopAtFirst).Events).To(BeEmpty())
		})
	})

	Context("with orbits", func() {
		BeforeEach(func() {
			f = forecast.New(integrators.NewEuler(integrators.DefaultStepScale))
		})

		It("never flags antipodal bodies sharing an angular velocity", func() {
			bodies = []dynamo.Body{
				orbital("A", 5, 100, 0.05, 0),
				orbital("B", 5, 100, 0.05, math.Pi),
			}

			Expect(f.Predict(bodies, 360, forecast.ScanAll).Events).To(BeEmpty())
		})

		It("finds the step where a moving orbit reaches a parked one", func() {
			bodies = []dynamo.Body{
				orbital("A", 5, 100, 0.05, 0),
				orbital("B", 5, 100, 0, math.Pi),
			}

			ev, ok := f.Predict(bodies, 360, forecast.StopAtFirst).First()
			Expect(ok).To(BeTrue())
			Expect(ev.Step).To(Equal(61))
			Expect(ev.Distance).To(BeNumerically("<", 10))
		})
	})

	Describe("Separations", func() {
		BeforeEach(func() {
			f = forecast.New(integrators.NewEuler(0.1))
			bodies = []dynamo.Body{
				linear("A", 10, dynamo.Vec3{}, dynamo.Vec3{X: 1}),
				linear("B", 10, dynamo.Vec3{X: 5}, dynamo.Vec3{X: -1}),
			}
		})

		It("starts at the current state and follows the projection", func() {
			seps, err := f.Separations(bodies, 0, 1, 2)

			Expect(err).NotTo(HaveOccurred())
			Expect(seps).To(HaveLen(3))
			Expect(seps[0]).To(BeNumerically("~", -15, 1e-9))
			Expect(seps[1]).To(BeNumerically("~", -15.2, 1e-9))
			Expect(seps[2]).To(BeNumerically("~", -15.4, 1e-9))
		})

		It("rejects an out of range pair", func() {
			_, err := f.Separations(bodies, 0, 5, 2)
			Expect(err).To(HaveOccurred())
		})

		It("finds the closest pair", func() {
			bodies = append(bodies, linear("C", 1, dynamo.Vec3{Y: 1000}, dynamo.Vec3{}))
			i, j, ok := f.ClosestPair(bodies, 10)
			Expect(ok).To(BeTrue())
			Expect([]int{i, j}).To(Equal([]int{0, 1}))
		})
	})
})

var _ = DescribeTable("ParseMode",
	func(in string, want forecast.Mode, fails bool) {
		got, err := forecast.ParseMode(in)
		if fails {
			Expect(err).To(HaveOccurred())
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	},
	Entry("default", "", forecast.ScanAll, false),
	Entry("scan-all", "scan-all", forecast.ScanAll, false),
	Entry("snake case", "stop_at_first", forecast.StopAtFirst, false),
	Entry("short", "FIRST", forecast.StopAtFirst, false),
	Entry("unknown", "sometimes", forecast.ScanAll, true),
)
