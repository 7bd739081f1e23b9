package umap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// curveSamples is the number of points the layout curve is fitted on.
const curveSamples = 300

// FitAB fits the low-dimensional similarity curve 1 / (1 + a*d^(2b)) to the
// target membership: 1 below minDist and exp(-(d-minDist)/spread) beyond it,
// sampled on [0, 3*spread]. The fit minimises squared error with Nelder-Mead.
func FitAB(spread, minDist float64) (a, b float64, err error) {
	if spread <= 0 {
		return 0, 0, fmt.Errorf("spread must be positive, got %v", spread)
	}

	xs := make([]float64, curveSamples)
	floats.Span(xs, 0, 3*spread)
	ys := make([]float64, curveSamples)
	for i, x := range xs {
		if x < minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			if p[0] <= 0 || p[1] <= 0 {
				return math.Inf(1)
			}
			var sse float64
			for i, x := range xs {
				r := 1/(1+p[0]*math.Pow(x, 2*p[1])) - ys[i]
				sse += r * r
			}
			return sse
		},
	}

	result, err := optimize.Minimize(problem, []float64{1, 1}, nil, &optimize.NelderMead{})
	if err != nil && result == nil {
		return 0, 0, fmt.Errorf("fit layout curve: %w", err)
	}
	a, b = result.X[0], result.X[1]
	if a <= 0 || b <= 0 || math.IsNaN(a) || math.IsNaN(b) {
		return 0, 0, fmt.Errorf("fit layout curve: degenerate parameters a=%v b=%v", a, b)
	}
	return a, b, nil
}
