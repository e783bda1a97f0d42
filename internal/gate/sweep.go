package gate

import (
	"log/slog"
	"math"

	"alertgate-sim/internal/probe"
)

// Point is one sweep grid cell: an evaluation summary tagged with the modeled
// load axes it was produced under.
type Point struct {
	Summary
	Intensity   float64
	Concurrency int
}

// RunSweep evaluates every combination of the intensity and concurrency axes
// in cartesian-product order (intensity outer, concurrency inner) and returns
// the cells in that fixed order. Trial count scales with intensity as a load
// proxy; concurrency is a modeled label, no parallel execution happens here.
// The probe is reused across cells, so its PRNG stream runs on continuously.
func RunSweep(p *probe.Probe, baseTrials int, timeoutThresholdMS float64, intensities []float64, concurrencies []int, logger *slog.Logger) []Point {
	points := make([]Point, 0, len(intensities)*len(concurrencies))
	for _, intensity := range intensities {
		for _, concurrency := range concurrencies {
			trials := int(math.Round(float64(baseTrials) * intensity))
			if trials < 1 {
				trials = 1
			}
			logger.Info("sweep cell start",
				"intensity", intensity, "concurrency", concurrency, "trials", trials)
			summary := Evaluate(p, trials, timeoutThresholdMS, false, logger)
			points = append(points, Point{
				Summary:     summary,
				Intensity:   intensity,
				Concurrency: concurrency,
			})
		}
	}
	return points
}
