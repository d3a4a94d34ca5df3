// Package results holds the series produced by an experiment and their presentation:
// fixture files that record the raw values, and charts rendered from them.
package results

import (
	"strconv"
)

// DefaultXLabel labels the x axis when a result is indexed by play.
const DefaultXLabel = "Plays"

// Series is one labeled line of a result, e.g. the average reward per play at epsilon 0.1.
type Series struct {
	Label  string    `yaml:"label"`
	Values []float64 `yaml:"values"`
}

// Result is an ordered mapping of labels to series, with the name it is displayed under
// and the file name its fixture and chart are saved as.
type Result struct {
	Name    string
	ImgName string
	// XLabel and X describe the x axis. With no X the values are indexed by play, from 1.
	XLabel string
	X      []float64
	series []Series
}

// NewResult returns an empty result displayed as @name and saved as @imgName.
func NewResult(name, imgName string) *Result {
	return &Result{
		Name:    name,
		ImgName: imgName,
		XLabel:  DefaultXLabel,
	}
}

// Set stores @values under @label. An existing label keeps its position.
func (r *Result) Set(label string, values []float64) {
	for i := range r.series {
		if r.series[i].Label == label {
			r.series[i].Values = values
			return
		}
	}
	r.series = append(r.series, Series{Label: label, Values: values})
}

// Get returns the values stored under @label.
func (r *Result) Get(label string) ([]float64, bool) {
	for _, s := range r.series {
		if s.Label == label {
			return s.Values, true
		}
	}
	return nil, false
}

// Labels returns the labels in insertion order.
func (r *Result) Labels() []string {
	labels := make([]string, 0, len(r.series))
	for _, s := range r.series {
		labels = append(labels, s.Label)
	}
	return labels
}

// Series returns the series in insertion order.
func (r *Result) Series() []Series {
	series := make([]Series, len(r.series))
	copy(series, r.series)
	return series
}

// Len is the number of series.
func (r *Result) Len() int {
	return len(r.series)
}

func (r *Result) String() string {
	return r.Name
}

// EpsilonLabel formats an exploration rate as a series label: 0, 0.1, 0.01.
func EpsilonLabel(epsilon float64) string {
	return strconv.FormatFloat(epsilon, 'f', -1, 64)
}

// GetPercent returns @count as a percentage of @total; zero when total is zero.
func GetPercent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
