// Package gaussian draws normally distributed values from a seedable generator.
package gaussian

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrSourceFailure is returned whenever the distribution cannot produce a usable sample.
// It is not transient; callers do not retry.
var ErrSourceFailure = errors.New("random source failure")

// The second PCG word for New.
const defaultStream = 0x9e3779b97f4a7c15

// Source owns a single generator. It is not safe for concurrent use; parallel units
// must each own a Source (see NewStream).
type Source struct {
	src rand.Source
	rng *rand.Rand
}

// New returns a Source seeded by @seed.
func New(seed uint64) *Source {
	return NewStream(seed, defaultStream)
}

// NewStream returns a Source for the given seed and stream. Distinct streams under the same
// seed yield independent sequences, which is how the runner gives every bandit its own generator.
func NewStream(seed, stream uint64) *Source {
	src := rand.NewPCG(seed, stream)
	return &Source{
		src: src,
		rng: rand.New(src),
	}
}

// Normal samples from Normal(mu, sigma).
func (s *Source) Normal(mu, sigma float64) (float64, error) {
	if !isFinite(mu) || !isFinite(sigma) || sigma < 0 {
		return 0, errors.Wrapf(ErrSourceFailure, "invalid normal parameters mu=%v sigma=%v", mu, sigma)
	}

	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}
	val := dist.Rand()
	if !isFinite(val) {
		return 0, errors.Wrapf(ErrSourceFailure, "non-finite sample from N(%v, %v)", mu, sigma)
	}
	return val, nil
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0, like rand.IntN.
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
