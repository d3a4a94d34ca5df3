package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 that may be read and updated without locks. The runner keeps one
// per play index for the reward and optimal-action tallies, written by the aggregator while the
// web server reads partial averages.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 returns an AtomicFloat64 holding @val.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// AtomicRead returns the current value.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicAdd attempts a single compare-and-swap of value+addend. If another writer changed the
// value in between, the add is not applied and succeeded is false; the caller decides whether to
// retry, recalculate, or drop the update.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// Add retries AtomicAdd until it lands and returns the new value.
func (af *AtomicFloat64) Add(addend float64) float64 {
	for {
		if newVal, ok := af.AtomicAdd(addend); ok {
			return newVal
		}
	}
}

// AtomicSet stores @val unconditionally.
func (af *AtomicFloat64) AtomicSet(val float64) {
	af.bits.Store(math.Float64bits(val))
}

// Slice returns @n zero-valued floats, e.g. one tally per play index.
func Slice(n int) []*AtomicFloat64 {
	vals := make([]*AtomicFloat64, n)
	for i := range vals {
		vals[i] = NewAtomicFloat64(0)
	}
	return vals
}

// Snapshot reads every value of @vals. Values are read one at a time, so a concurrent
// writer may be observed partway through an update of the whole slice.
func Snapshot(vals []*AtomicFloat64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v.AtomicRead()
	}
	return out
}
