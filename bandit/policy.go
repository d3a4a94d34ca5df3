package bandit

import (
	"math"

	"github.com/pkg/errors"
)

// Policy is one of the two moves available to an epsilon-greedy agent.
type Policy int

const (
	Exploit Policy = iota
	Explore
)

func (p Policy) String() string {
	switch p {
	case Exploit:
		return "exploit"
	case Explore:
		return "explore"
	}
	return "unknown"
}

const (
	// DefaultPrecision is the number of decimal digits epsilon is rounded to.
	DefaultPrecision = 3
	// MaxPrecision bounds the scale 10^precision well inside int range.
	MaxPrecision = 9
)

// Mixture is epsilon expressed as a reduced integer ratio explore:exploit. Choosing uniformly
// from a multiset holding Exploit copies of "exploit" and Explore copies of "explore" makes the
// long-run exploration frequency the exact rational approximation of epsilon.
type Mixture struct {
	Exploit int
	Explore int
}

// NewMixture rounds epsilon to @precision decimal digits and reduces the resulting
// explore:exploit weights by their greatest common divisor.
func NewMixture(epsilon float64, precision int) (Mixture, error) {
	if math.IsNaN(epsilon) || epsilon < 0 || epsilon > 1 {
		return Mixture{}, errors.Wrapf(ErrInvalidConfiguration, "epsilon %v outside [0,1]", epsilon)
	}
	if precision < 0 || precision > MaxPrecision {
		return Mixture{}, errors.Wrapf(ErrInvalidConfiguration, "precision %d outside [0,%d]", precision, MaxPrecision)
	}

	scale := pow10(precision)
	explore := int(math.Round(epsilon * float64(scale)))
	exploit := scale - explore
	// gcd(x, 0) == x, so epsilon 0 reduces to 1:0 and epsilon 1 to 0:1.
	d := gcd(exploit, explore)

	return Mixture{
		Exploit: exploit / d,
		Explore: explore / d,
	}, nil
}

// Size is the number of entries in the weighted multiset.
func (m Mixture) Size() int {
	return m.Exploit + m.Explore
}

// Rate is the exploration frequency the mixture converges to.
func (m Mixture) Rate() float64 {
	return float64(m.Explore) / float64(m.Size())
}

// Choose draws one entry of the multiset uniformly, using @intn to produce an index in [0, n).
// Entries [0, Exploit) are "exploit" and the rest are "explore"; the multiset is never materialized.
func (m Mixture) Choose(intn func(int) int) Policy {
	if intn(m.Size()) < m.Exploit {
		return Exploit
	}
	return Explore
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func pow10(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
