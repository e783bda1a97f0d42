// SLA aggregation over repeated probe trials.
package gate

import (
	"log/slog"
	"math"
	"sort"

	"alertgate-sim/internal/probe"
)

// Summary aggregates one evaluation pass into SLA statistics.
type Summary struct {
	P95LatencyMS float64
	TimeoutRate  float64
	MissingRate  float64
	Delivered    int
	Total        int
	Timeouts     int
	Missings     int
	// RawLatencies holds delivered latencies only when sample retention was
	// requested; otherwise nil to bound memory.
	RawLatencies []float64
}

// Evaluate runs trials independent probe calls and reduces the outcome stream
// into a Summary. Counts and the percentile are order-independent, so trial
// order never affects the result. Progress is logged at decile boundaries.
func Evaluate(p *probe.Probe, trials int, timeoutThresholdMS float64, retainSamples bool, logger *slog.Logger) Summary {
	s := Summary{Total: trials}
	delivered := make([]float64, 0, trials)

	decile := trials / 10
	for i := 0; i < trials; i++ {
		out := p.Sample(timeoutThresholdMS)
		switch {
		case out.TimedOut:
			s.Timeouts++
			if out.Missing {
				s.Missings++
			}
		case out.Missing:
			s.Missings++
		default:
			s.Delivered++
			delivered = append(delivered, out.LatencyMS)
		}
		if decile > 0 && (i+1)%decile == 0 {
			logger.Info("trial progress", "completed", i+1, "total", trials)
		}
	}

	s.P95LatencyMS = percentile(delivered, 0.95)
	if trials > 0 {
		s.TimeoutRate = float64(s.Timeouts) / float64(trials)
		s.MissingRate = float64(s.Missings) / float64(trials)
	}
	if retainSamples {
		s.RawLatencies = delivered
	}
	return s
}

// percentile returns the q-quantile of samples. Zero samples yield +Inf so a
// finite-threshold gate fails instead of passing silently.
func percentile(samples []float64, q float64) float64 {
	if len(samples) == 0 {
		return math.Inf(1)
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
