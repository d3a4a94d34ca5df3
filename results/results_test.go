package results

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"testbed/gaussian"

	. "github.com/smartystreets/goconvey/convey"
)

func TestResult(t *testing.T) {
	Convey("When series are stored in a result", t, func() {
		r := NewResult("Average rewards", "average_rewards")
		r.Set(EpsilonLabel(0), []float64{0.1, 0.5})
		r.Set(EpsilonLabel(0.1), []float64{0.2, 0.4})
		r.Set(EpsilonLabel(0.01), []float64{0.3, 0.3})

		Convey("Labels keep insertion order", func() {
			So(r.Labels(), ShouldResemble, []string{"0", "0.1", "0.01"})
			So(r.Len(), ShouldEqual, 3)
		})

		Convey("Replacing a label keeps its position", func() {
			r.Set("0", []float64{9})
			So(r.Labels(), ShouldResemble, []string{"0", "0.1", "0.01"})
			values, ok := r.Get("0")
			So(ok, ShouldBeTrue)
			So(values, ShouldResemble, []float64{9})
		})

		Convey("Missing labels are reported", func() {
			_, ok := r.Get("0.5")
			So(ok, ShouldBeFalse)
		})

		Convey("The result prints as its display name", func() {
			So(r.String(), ShouldEqual, "Average rewards")
		})
	})

	Convey("GetPercent", t, func() {
		So(GetPercent(1, 4), ShouldEqual, 25.0)
		So(GetPercent(3, 0), ShouldEqual, 0.0)
	})
}

func TestFixtures(t *testing.T) {
	Convey("When a result is saved as a fixture", t, func() {
		dir := t.TempDir()
		r := NewResult("Percentage of optimal value", "optimal_action")
		r.Set("0", []float64{10, 20, 30})
		r.Set("0.1", []float64{15, 25, 45})

		path, err := WriteFixture(dir, r, "run-1")
		So(err, ShouldBeNil)
		So(path, ShouldEqual, filepath.Join(dir, "optimal_action.yaml"))

		Convey("It loads back with the same labels, values, and run id", func() {
			loaded, runID, err := ReadFixture(path)
			So(err, ShouldBeNil)
			So(runID, ShouldEqual, "run-1")
			So(loaded.Name, ShouldEqual, r.Name)
			So(loaded.XLabel, ShouldEqual, DefaultXLabel)
			So(loaded.Series(), ShouldResemble, r.Series())
		})

		Convey("It is listed by image name", func() {
			names, err := ListFixtures(dir)
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"optimal_action"})
		})
	})

	Convey("A result without an image name cannot be saved", t, func() {
		_, err := WriteFixture(t.TempDir(), NewResult("x", ""), "")
		So(err, ShouldNotBeNil)
	})

	Convey("A missing fixture fails to load", t, func() {
		_, _, err := ReadFixture(filepath.Join(t.TempDir(), "nope.yaml"))
		So(err, ShouldNotBeNil)
	})
}

func TestCharts(t *testing.T) {
	Convey("When a result is rendered", t, func() {
		r := NewResult("Average rewards", "average_rewards")
		r.Set("0.1", []float64{0.1, 0.7, 1.2})

		var buf bytes.Buffer
		So(Render(&buf, r), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "Average rewards")
		So(buf.String(), ShouldContainSubstring, "Plays")
	})

	Convey("When a result is drawn", t, func() {
		dir := t.TempDir()
		r := NewResult("Average rewards", "average_rewards")
		r.Set("0", []float64{1, 2})

		path, err := Draw(filepath.Join(dir, "fixtures"), filepath.Join(dir, "results"), r, "run-2")
		So(err, ShouldBeNil)
		So(path, ShouldEqual, filepath.Join(dir, "results", "average_rewards.html"))

		_, err = os.Stat(filepath.Join(dir, "fixtures", "average_rewards.yaml"))
		So(err, ShouldBeNil)
		_, err = os.Stat(path)
		So(err, ShouldBeNil)
	})

	Convey("When the gaussian curves become a result", t, func() {
		curves := gaussian.Curves(gaussian.ReferenceSigmas, -4, 4, 0.5)
		r := GaussianResult(curves)

		So(r.Len(), ShouldEqual, 4)
		So(r.Labels()[0], ShouldEqual, "σ = 0.2")
		So(r.X, ShouldHaveLength, 16)
		So(xAxis(r)[0], ShouldEqual, "-4")
	})
}
