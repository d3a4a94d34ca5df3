package results

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/pkg/errors"

	"testbed/gaussian"
)

// ChartExt is the extension of rendered charts.
const ChartExt = ".html"

// NewLine builds a line chart of @r: one line per series, x axis by play unless r.X is set.
func NewLine(r *Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: r.Name,
			Theme:     types.ThemeInfographic,
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: r.Name,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: r.XLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: r.Name,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)

	line.SetXAxis(xAxis(r))
	for _, s := range r.series {
		items := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(
			s.Label,
			items,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

func xAxis(r *Result) []string {
	if r.X != nil {
		xs := make([]string, len(r.X))
		for i, x := range r.X {
			xs[i] = fmt.Sprintf("%g", x)
		}
		return xs
	}

	n := 0
	for _, s := range r.series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	xs := make([]string, n)
	for i := range xs {
		xs[i] = fmt.Sprintf("%d", i+1)
	}
	return xs
}

// Render writes @r as a standalone html page.
func Render(w io.Writer, r *Result) error {
	page := components.NewPage()
	page.SetPageTitle(r.Name)
	page.AddCharts(NewLine(r))
	if err := page.Render(w); err != nil {
		return errors.Wrapf(err, "render %s", r.ImgName)
	}
	return nil
}

// Draw saves @r as a fixture under @fixturesDir and as a chart under @chartsDir.
// It returns the chart's path.
func Draw(fixturesDir, chartsDir string, r *Result, runID string) (string, error) {
	if _, err := WriteFixture(fixturesDir, r, runID); err != nil {
		return "", err
	}
	if err := os.MkdirAll(chartsDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create charts dir %s", chartsDir)
	}

	path := filepath.Join(chartsDir, r.ImgName+ChartExt)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create chart %s", path)
	}
	defer f.Close()

	if err = Render(f, r); err != nil {
		return "", err
	}
	return path, nil
}

// GaussianResult converts reference normal curves into a result, one series per sigma.
func GaussianResult(curves []gaussian.Curve) *Result {
	r := NewResult("Normal Gaussian Distribution", "gaussian")
	r.XLabel = "x"
	for _, curve := range curves {
		if r.X == nil {
			r.X = curve.X
		}
		r.Set(fmt.Sprintf("σ = %g", curve.Sigma), curve.Y)
	}
	return r
}
