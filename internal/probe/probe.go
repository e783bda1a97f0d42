// Synthetic alert-delivery probe: one stochastic delivery outcome per call.
package probe

import (
	"math"
	"math/rand"
)

// Outcome is a single simulated delivery. Exactly one of normal delivery,
// timeout, or silent missing holds per outcome.
type Outcome struct {
	Delivered bool
	LatencyMS float64
	TimedOut  bool
	Missing   bool
}

// Probe generates delivery outcomes from a fixed parameter set and a seeded
// PRNG stream. It keeps no other state, so one probe can back any number of
// sequential evaluation passes.
type Probe struct {
	params ParameterSet
	rng    *rand.Rand
}

// New builds a Probe. The same parameters and seed reproduce the exact same
// outcome sequence.
func New(params ParameterSet, seed int64) *Probe {
	return &Probe{params: params, rng: rand.New(rand.NewSource(seed))}
}

// Params returns the immutable parameter set backing this probe.
func (p *Probe) Params() ParameterSet {
	return p.params
}

// Sample draws one delivery outcome against the given timeout threshold.
//
// The candidate latency is a clamped log-normal base plus a clamped
// exponential right tail. Two independent failure draws sit on top: a
// background silent-missing event and a timeout branch. When both fire the
// timeout branch wins.
func (p *Probe) Sample(timeoutThresholdMS float64) Outcome {
	base := p.baseLatency()
	tail := p.tailLatency()
	candidate := base + tail

	backgroundMissing := p.rng.Float64() < p.params.BackgroundMissingProbability

	if p.rng.Float64() < p.params.TailEntryProbability {
		return Outcome{
			LatencyMS: timeoutThresholdMS + p.rng.Float64()*p.params.TimeoutOvershootMaxMS,
			TimedOut:  true,
			Missing:   p.rng.Float64() < p.params.MissingProbabilityGivenTimeout,
		}
	}
	if backgroundMissing {
		return Outcome{LatencyMS: candidate, Missing: true}
	}
	return Outcome{Delivered: true, LatencyMS: candidate}
}

// baseLatency draws from the log-normal via a Box-Muller transform over two
// uniform draws, clamped to [LatencyMinMS, LatencyMaxMS]. Equal min and max
// degenerate to a constant draw.
func (p *Probe) baseLatency() float64 {
	u1 := 1 - p.rng.Float64() // (0, 1], keeps the log finite
	u2 := p.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	latency := math.Exp(p.params.LatencyLogMean + p.params.LatencyLogSigma*z)
	return clamp(latency, p.params.LatencyMinMS, p.params.LatencyMaxMS)
}

// tailLatency draws the additive right tail from an exponential with mean
// TailMeanMS, capped at TailMaxMS.
func (p *Probe) tailLatency() float64 {
	if p.params.TailMeanMS <= 0 {
		return 0
	}
	tail := -p.params.TailMeanMS * math.Log(1-p.rng.Float64())
	return math.Min(tail, p.params.TailMaxMS)
}
