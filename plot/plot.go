// Package plot renders optimization traces as terminal charts.
package plot

import (
	"github.com/guptarohit/asciigraph"
)

const (
	defaultWidth  = 70
	defaultHeight = 12
)

// Convergence renders the running best objective value over the evaluation
// history: the curve that flattens out as the optimizer converges.
func Convergence(funHistory []float64) string {
	if len(funHistory) == 0 {
		return ""
	}

	best := make([]float64, len(funHistory))

	low := funHistory[0]
	for i, v := range funHistory {
		if v < low {
			low = v
		}

		best[i] = low
	}

	return asciigraph.Plot(best,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption("convergence (best objective so far)"),
	)
}

// Trace renders the raw objective value of each evaluation in order.
func Trace(funHistory []float64) string {
	if len(funHistory) == 0 {
		return ""
	}

	return asciigraph.Plot(funHistory,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption("objective per evaluation"),
	)
}
