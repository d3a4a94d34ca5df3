package gaussian

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"
)

func TestNormal(t *testing.T) {
	Convey("When sampling from a standard normal", t, func() {
		src := New(42)
		n := 5000
		samples := make([]float64, n)
		for i := range samples {
			val, err := src.Normal(0, 1)
			So(err, ShouldBeNil)
			samples[i] = val
		}

		Convey("About half the samples fall above mu", func() {
			above := 0
			for _, x := range samples {
				if x > 0 {
					above++
				}
			}
			So(float64(above)/float64(n)*100, ShouldAlmostEqual, 50, 2)
		})

		Convey("About 68% of samples fall within one sigma", func() {
			within := 0
			for _, x := range samples {
				if x > -1 && x < 1 {
					within++
				}
			}
			So(float64(within)/float64(n)*100, ShouldAlmostEqual, 68, 2)
		})

		Convey("The sample mean and deviation match the parameters", func() {
			mean, std := stat.MeanStdDev(samples, nil)
			So(math.Abs(mean), ShouldBeLessThan, 0.12)
			So(math.Abs(std-1), ShouldBeLessThan, 0.12)
		})
	})

	Convey("When the same seed and stream are reused", t, func() {
		a, b := NewStream(7, 3), NewStream(7, 3)
		c := NewStream(7, 4)
		same, differ := true, false
		for i := 0; i < 100; i++ {
			x, _ := a.Normal(0, 1)
			y, _ := b.Normal(0, 1)
			z, _ := c.Normal(0, 1)
			same = same && x == y
			differ = differ || x != z
		}
		So(same, ShouldBeTrue)
		So(differ, ShouldBeTrue)
	})

	Convey("When the parameters are unusable", t, func() {
		src := New(1)
		for _, params := range [][2]float64{{0, -1}, {math.NaN(), 1}, {0, math.Inf(1)}} {
			_, err := src.Normal(params[0], params[1])
			So(errors.Is(err, ErrSourceFailure), ShouldBeTrue)
		}
	})

	Convey("When sigma is zero the sample is mu", t, func() {
		val, err := New(1).Normal(3.5, 0)
		So(err, ShouldBeNil)
		So(val, ShouldEqual, 3.5)
	})
}

func TestIntN(t *testing.T) {
	Convey("IntN stays within range", t, func() {
		src := New(9)
		seen := map[int]bool{}
		for i := 0; i < 1000; i++ {
			v := src.IntN(5)
			So(v, ShouldBeBetweenOrEqual, 0, 4)
			seen[v] = true
		}
		So(len(seen), ShouldEqual, 5)
	})
}

func TestCurves(t *testing.T) {
	Convey("When building the reference curves", t, func() {
		curves := Curves(ReferenceSigmas, -4, 4, 0.01)

		So(curves, ShouldHaveLength, len(ReferenceSigmas))
		So(curves[0].X, ShouldHaveLength, 800)
		So(curves[0].X[0], ShouldEqual, -4)

		Convey("Each curve peaks at zero with height 1/(sigma*sqrt(2pi))", func() {
			for _, curve := range curves {
				peak := 0
				for i := range curve.Y {
					if curve.Y[i] > curve.Y[peak] {
						peak = i
					}
				}
				So(curve.X[peak], ShouldAlmostEqual, 0, 1e-9)
				So(curve.Y[peak], ShouldAlmostEqual, 1/(curve.Sigma*math.Sqrt(2*math.Pi)), 1e-9)
			}
		})

		Convey("Each curve integrates to about one", func() {
			for _, curve := range curves {
				area := 0.0
				for _, y := range curve.Y {
					area += y * 0.01
				}
				So(area, ShouldAlmostEqual, 1, 0.01)
			}
		})
	})

	Convey("A non-positive step yields empty curves", t, func() {
		curves := Curves([]float64{1}, -1, 1, 0)
		So(curves, ShouldHaveLength, 1)
		So(curves[0].X, ShouldBeEmpty)
	})
}
