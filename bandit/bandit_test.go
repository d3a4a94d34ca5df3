package bandit

import (
	"math"
	"testing"

	"testbed/gaussian"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"
)

// brokenSampler fails every normal draw after the first @ok of them.
type brokenSampler struct {
	*gaussian.Source
	ok int
}

func (bs *brokenSampler) Normal(mu, sigma float64) (float64, error) {
	if bs.ok <= 0 {
		return 0, errors.New("entropy pool drained")
	}
	bs.ok--
	return bs.Source.Normal(mu, sigma)
}

func newTestBandit(numActions int, seed uint64) *Bandit {
	b, err := New(numActions, gaussian.New(seed))
	So(err, ShouldBeNil)
	return b
}

func TestAction(t *testing.T) {
	Convey("When actions are created", t, func() {
		b := newTestBandit(20000, 1)

		Convey("Their values follow N(0, 1)", func() {
			above, within := 0, 0
			for _, action := range b.Actions() {
				if action.Value() > 0 {
					above++
				}
				if action.Value() > -1 && action.Value() < 1 {
					within++
				}
			}
			n := float64(len(b.Actions()))
			So(float64(above)/n*100, ShouldAlmostEqual, 50, 2)
			So(float64(within)/n*100, ShouldAlmostEqual, 68, 2)
		})

		Convey("Their histories start with the zero sentinel", func() {
			action := b.Actions()[0]
			So(action.Rewards(), ShouldResemble, []float64{0})
			So(action.EstimatedValue(), ShouldEqual, 0.0)
		})
	})

	Convey("When an action is played repeatedly", t, func() {
		b := newTestBandit(10, 2)
		action := b.Actions()[3]
		for i := 0; i < 1000; i++ {
			So(action.Play(), ShouldBeNil)
		}

		Convey("Its history holds one reward per play after the sentinel", func() {
			So(action.Rewards(), ShouldHaveLength, 1001)
			So(action.Rewards()[0], ShouldEqual, 0.0)
		})

		Convey("The spread of its rewards converges to sigma", func() {
			So(math.Abs(1-stat.StdDev(action.Rewards(), nil)), ShouldBeLessThan, 0.12)
		})

		Convey("Its estimate is the sentinel-biased mean of the history", func() {
			So(action.EstimatedValue(), ShouldAlmostEqual, stat.Mean(action.Rewards(), nil), 1e-9)
			So(math.Abs(action.EstimatedValue()-action.Value()), ShouldBeLessThan, 0.15)
		})

		Convey("The parent bandit records every play", func() {
			So(b.Plays(), ShouldEqual, 1000)
			So(b.LastAction(), ShouldEqual, action)
			So(b.Rewards()[999], ShouldEqual, action.Rewards()[1000])
		})
	})

	Convey("The sentinel biases an early estimate toward zero", t, func() {
		b := newTestBandit(1, 3)
		action := b.Actions()[0]
		So(action.Play(), ShouldBeNil)
		So(action.EstimatedValue(), ShouldEqual, action.Rewards()[1]/2)
	})
}

func TestBandit(t *testing.T) {
	Convey("When creating bandits", t, func() {
		Convey("The testbed default has ten actions", func() {
			So(newTestBandit(DefaultActions, 1).Actions(), ShouldHaveLength, 10)
			So(newTestBandit(20, 1).Actions(), ShouldHaveLength, 20)
		})

		Convey("Fewer than one action is invalid", func() {
			_, err := New(0, gaussian.New(1))
			So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
		})

		Convey("A nil sampler is invalid", func() {
			_, err := New(10, nil)
			So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
		})

		Convey("The optimal action has the maximal true value", func() {
			b := newTestBandit(10, 4)
			for _, action := range b.Actions() {
				So(action.Value(), ShouldBeLessThanOrEqualTo, b.OptimalAction().Value())
			}
		})

		Convey("A failing sampler aborts creation", func() {
			_, err := New(10, &brokenSampler{Source: gaussian.New(1), ok: 4})
			So(errors.Is(err, ErrRandomSource), ShouldBeTrue)
		})

		Convey("The distribution option shifts action values", func() {
			b, err := New(500, gaussian.New(5), WithDistribution(10, 1))
			So(err, ShouldBeNil)
			values := []float64{}
			for _, action := range b.Actions() {
				values = append(values, action.Value())
			}
			So(stat.Mean(values, nil), ShouldAlmostEqual, 10, 0.2)
		})

		Convey("A fresh bandit has no plays", func() {
			b := newTestBandit(10, 1)
			So(b.LastAction(), ShouldBeNil)
			So(b.Plays(), ShouldEqual, 0)
			So(b.Rewards(), ShouldBeEmpty)
			So(b.OptimalLog(), ShouldBeEmpty)
		})
	})

	Convey("When selecting the greedy action", t, func() {
		b := newTestBandit(10, 6)

		Convey("A fresh bandit ties at zero and picks the first action", func() {
			So(b.Greedy(), ShouldEqual, b.Actions()[0])
		})

		Convey("Repeated calls without a play return the same action", func() {
			So(b.Greedy(), ShouldEqual, b.Greedy())
		})

		Convey("It tracks the estimates as they change", func() {
			for i := 0; i < 50; i++ {
				So(b.PlayEpsilonGreedy(0.5, DefaultPrecision), ShouldBeNil)
				greedy := b.Greedy()
				for _, action := range b.Actions() {
					So(action.EstimatedValue(), ShouldBeLessThanOrEqualTo, greedy.EstimatedValue())
				}
			}
		})
	})

	Convey("When exploiting a fresh bandit", t, func() {
		b := newTestBandit(10, 7)
		greedy := b.Greedy()
		So(b.Exploit(), ShouldBeNil)
		So(b.LastAction(), ShouldEqual, greedy)
	})

	Convey("When exploring", t, func() {
		b := newTestBandit(10, 8)

		Convey("The played action is never the prior greedy one", func() {
			for i := 0; i < 200; i++ {
				greedy := b.Greedy()
				So(b.Explore(), ShouldBeNil)
				So(b.LastAction(), ShouldNotBeNil)
				So(b.LastAction(), ShouldNotEqual, greedy)
			}
		})

		Convey("A single-action bandit has nothing to explore", func() {
			single := newTestBandit(1, 8)
			err := single.Explore()
			So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
			So(single.Plays(), ShouldEqual, 0)
		})
	})

	Convey("When playing epsilon-greedy", t, func() {
		b := newTestBandit(10, 9)

		Convey("Epsilon 0 always exploits", func() {
			for i := 0; i < 300; i++ {
				greedy := b.Greedy()
				So(b.PlayEpsilonGreedy(0, DefaultPrecision), ShouldBeNil)
				So(b.LastAction(), ShouldEqual, greedy)
			}
		})

		Convey("Epsilon 1 always explores", func() {
			for i := 0; i < 300; i++ {
				greedy := b.Greedy()
				So(b.PlayEpsilonGreedy(1, DefaultPrecision), ShouldBeNil)
				So(b.LastAction(), ShouldNotEqual, greedy)
			}
		})

		Convey("Epsilon 0.1 explores about one play in ten", func() {
			explored := 0
			for i := 0; i < 1000; i++ {
				greedy := b.Greedy()
				So(b.PlayEpsilonGreedy(0.1, DefaultPrecision), ShouldBeNil)
				if b.LastAction() != greedy {
					explored++
				}
			}
			So(float64(explored)/1000, ShouldAlmostEqual, 0.1, 0.03)
		})

		Convey("Epsilon outside [0,1] is invalid", func() {
			for _, epsilon := range []float64{-0.1, 1.1, math.NaN()} {
				err := b.PlayEpsilonGreedy(epsilon, DefaultPrecision)
				So(errors.Is(err, ErrInvalidConfiguration), ShouldBeTrue)
			}
			So(b.Plays(), ShouldEqual, 0)
		})

		Convey("Every play extends both logs", func() {
			for i := 0; i < 100; i++ {
				So(b.PlayEpsilonGreedy(0.1, DefaultPrecision), ShouldBeNil)
				So(len(b.Rewards()), ShouldEqual, b.Plays())
				So(len(b.OptimalLog()), ShouldEqual, b.Plays())
				So(b.OptimalLog()[i], ShouldEqual, b.LastAction() == b.OptimalAction())
			}
			So(b.Plays(), ShouldEqual, 100)
		})
	})

	Convey("When the sampler fails mid-game", t, func() {
		src := &brokenSampler{Source: gaussian.New(1), ok: 13}
		b, err := New(10, src)
		So(err, ShouldBeNil)

		for i := 0; i < 3; i++ {
			So(b.Exploit(), ShouldBeNil)
		}
		err = b.Exploit()
		So(errors.Is(err, ErrRandomSource), ShouldBeTrue)
		So(b.Plays(), ShouldEqual, 3)
	})
}
