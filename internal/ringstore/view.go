package ringstore

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// View is a materialized window: Height rows of Width samples, row-major,
// oldest row first. Start is the logical index of the first row.
type View struct {
	Start  int
	Width  int
	Height int
	Data   []float32
}

// Row returns row i of the view.
func (v View) Row(i int) []float32 {
	return v.Data[i*v.Width : (i+1)*v.Width]
}

// Empty reports whether the view holds no samples.
func (v View) Empty() bool { return len(v.Data) == 0 }

// Summary reports the distribution of the view's samples.
func (v View) Summary() Summary { return Summarize(v.Data) }

// Mean returns the mean sample, NaN for an empty view.
func (v View) Mean() float64 { return v.Summary().Mean }

// Median returns the median sample, NaN for an empty view.
func (v View) Median() float64 { return v.Summary().Median }

// MinMax returns the smallest and largest samples, NaN for an empty view.
func (v View) MinMax() (lo, hi float64) {
	s := v.Summary()
	return s.Min, s.Max
}

// Summary holds basic statistics of a sample set.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes a Summary. Empty input yields NaN statistics.
func Summarize(samples []float32) Summary {
	if len(samples) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, StdDev: nan, Median: nan, Min: nan, Max: nan}
	}
	xs := make([]float64, len(samples))
	for i, v := range samples {
		xs[i] = float64(v)
	}
	s := Summary{Count: len(xs), Min: floats.Min(xs), Max: floats.Max(xs)}
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)

	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 0 {
		s.Median = 0.5 * (xs[mid-1] + xs[mid])
	} else {
		s.Median = xs[mid]
	}
	return s
}
