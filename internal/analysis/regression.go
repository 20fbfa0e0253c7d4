package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInsufficientData is returned when a regression has fewer than three
// points or no variation in x or y.
var ErrInsufficientData = errors.New("insufficient data for regression")

// Fit is an ordinary least-squares line y = Intercept + Slope*x.
type Fit struct {
	N           int     `json:"n"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	RSquared    float64 `json:"r_squared"`
	SlopePValue float64 `json:"slope_p_value"`
}

// FitOLS fits y on x with an intercept. The slope p-value is the two-sided
// Student-t test of slope = 0 with n-2 degrees of freedom.
func FitOLS(xs, ys []float64) (Fit, error) {
	if len(xs) != len(ys) {
		return Fit{}, fmt.Errorf("fit ols: %d x values, %d y values", len(xs), len(ys))
	}
	n := len(xs)
	if n < 3 {
		return Fit{}, fmt.Errorf("fit ols: %d points: %w", n, ErrInsufficientData)
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return Fit{}, fmt.Errorf("fit ols: constant series: %w", ErrInsufficientData)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	return Fit{
		N:           n,
		Slope:       slope,
		Intercept:   intercept,
		RSquared:    stat.RSquared(xs, ys, nil, intercept, slope),
		SlopePValue: slopePValue(xs, ys, intercept, slope),
	}, nil
}

func slopePValue(xs, ys []float64, intercept, slope float64) float64 {
	n := float64(len(xs))
	meanX := stat.Mean(xs, nil)

	var sse, sxx float64
	for i := range xs {
		r := ys[i] - (intercept + slope*xs[i])
		sse += r * r
		dx := xs[i] - meanX
		sxx += dx * dx
	}

	se := math.Sqrt(sse / (n - 2) / sxx)
	if se == 0 {
		// Exact fit.
		if slope == 0 {
			return 1
		}
		return 0
	}

	t := math.Abs(slope / se)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
	return 2 * dist.Survival(t)
}
