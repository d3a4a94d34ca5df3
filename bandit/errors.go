package bandit

import (
	"testbed/gaussian"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfiguration is returned for unusable construction or policy parameters,
	// and by Explore when no non-greedy action exists.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrRandomSource is returned when the sampler fails. It is fatal and never retried.
	ErrRandomSource = gaussian.ErrSourceFailure
)

// sourceFailure ensures a sampler error is classified as ErrRandomSource, whatever
// the Sampler implementation returned.
func sourceFailure(err error, msg string) error {
	if errors.Is(err, ErrRandomSource) {
		return errors.Wrap(err, msg)
	}
	return errors.Wrapf(ErrRandomSource, "%s: %v", msg, err)
}
