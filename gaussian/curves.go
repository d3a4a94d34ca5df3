package gaussian

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// ReferenceSigmas are the widths drawn in the reference figure of normal curves.
var ReferenceSigmas = []float64{0.2, 0.5, 1, 2}

// Curve is the density of a zero-mean normal distribution sampled over a range of x.
type Curve struct {
	Sigma float64
	X     []float64
	Y     []float64
}

// Curves evaluates the N(0, sigma) density for every sigma over [from, to) by @step.
// A non-positive step or an empty range yields curves with no points.
func Curves(sigmas []float64, from, to, step float64) []Curve {
	var xs []float64
	if step > 0 {
		for i := 0; ; i++ {
			x := from + float64(i)*step
			if x >= to {
				break
			}
			xs = append(xs, x)
		}
	}

	curves := make([]Curve, 0, len(sigmas))
	for _, sigma := range sigmas {
		dist := distuv.Normal{Mu: 0, Sigma: sigma}
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = dist.Prob(x)
		}
		curves = append(curves, Curve{
			Sigma: sigma,
			X:     xs,
			Y:     ys,
		})
	}
	return curves
}
