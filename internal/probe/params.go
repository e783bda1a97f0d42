package probe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
)

// ParameterSet holds the full stochastic model of one delivery profile.
// It is built once per probe and never mutated afterwards.
type ParameterSet struct {
	Profile                        string
	BackgroundMissingProbability   float64
	LatencyLogMean                 float64
	LatencyLogSigma                float64
	LatencyMinMS                   float64
	LatencyMaxMS                   float64
	TailEntryProbability           float64
	TailMeanMS                     float64
	TailMaxMS                      float64
	TimeoutOvershootMaxMS          float64
	MissingProbabilityGivenTimeout float64
}

// Hard safety bounds applied to every resolved set, whatever its origin.
const (
	sigmaMin     = 0.05
	sigmaMax     = 1.0
	tailEntryMin = 0.0001
	tailEntryMax = 0.1
	tailMaxCapMS = 2000.0
)

// BaselineProfile names the preset every resolution starts from.
const BaselineProfile = "baseline"

// DefaultPresets returns the built-in profile table. The table is constructed
// fresh on each call so resolvers never share mutable state.
func DefaultPresets() map[string]ParameterSet {
	return map[string]ParameterSet{
		"baseline": {
			Profile:                        "baseline",
			BackgroundMissingProbability:   0.0002,
			LatencyLogMean:                 4.8,
			LatencyLogSigma:                0.35,
			LatencyMinMS:                   5,
			LatencyMaxMS:                   1200,
			TailEntryProbability:           0.004,
			TailMeanMS:                     40,
			TailMaxMS:                      400,
			TimeoutOvershootMaxMS:          250,
			MissingProbabilityGivenTimeout: 0.1,
		},
		"degraded": {
			Profile:                        "degraded",
			BackgroundMissingProbability:   0.002,
			LatencyLogMean:                 5.3,
			LatencyLogSigma:                0.6,
			LatencyMinMS:                   10,
			LatencyMaxMS:                   1800,
			TailEntryProbability:           0.02,
			TailMeanMS:                     120,
			TailMaxMS:                      900,
			TimeoutOvershootMaxMS:          400,
			MissingProbabilityGivenTimeout: 0.3,
		},
		"chaos": {
			Profile:                        "chaos",
			BackgroundMissingProbability:   0.01,
			LatencyLogMean:                 5.7,
			LatencyLogSigma:                0.9,
			LatencyMinMS:                   10,
			LatencyMaxMS:                   2500,
			TailEntryProbability:           0.08,
			TailMeanMS:                     300,
			TailMaxMS:                      1500,
			TimeoutOvershootMaxMS:          800,
			MissingProbabilityGivenTimeout: 0.5,
		},
	}
}

// Source supplies external configuration values by dotted key. A nil Source
// resolves to the pure baseline preset.
type Source interface {
	Float(key string) (float64, bool)
	String(key string) (string, bool)
}

// Resolver merges a preset table with an external source into a clamped
// ParameterSet. The preset table is passed in at construction so several
// resolvers can coexist in one process.
type Resolver struct {
	presets map[string]ParameterSet
	logger  *slog.Logger
}

// NewResolver builds a Resolver over the given preset table.
func NewResolver(presets map[string]ParameterSet, logger *slog.Logger) *Resolver {
	return &Resolver{presets: presets, logger: logger}
}

// Resolve produces one ParameterSet: baseline preset first, a known named
// profile replaces it wholesale, otherwise each known field is taken from the
// source when present. Safety clamps apply last, regardless of origin.
func (r *Resolver) Resolve(src Source) ParameterSet {
	p := r.presets[BaselineProfile]

	if src != nil {
		name, _ := src.String("simulator.profile")
		if preset, known := r.presets[name]; known && name != BaselineProfile {
			p = preset
		} else {
			if name != "" && name != BaselineProfile {
				r.logger.Info("unknown simulator profile, falling back to baseline",
					"profile", name)
			}
			for _, f := range fieldKeys(&p) {
				if v, ok := src.Float(f.key); ok {
					*f.dst = v
				}
			}
		}
	}

	p = p.clamped()
	r.logger.Info("resolved simulator parameters",
		"profile", p.Profile,
		"fingerprint", p.Fingerprint(),
		"params", fmt.Sprintf("%+v", p))
	return p
}

type fieldKey struct {
	key string
	dst *float64
}

// fieldKeys maps dotted configuration keys onto the fields of p.
func fieldKeys(p *ParameterSet) []fieldKey {
	return []fieldKey{
		{"simulator.missing.background", &p.BackgroundMissingProbability},
		{"simulator.latency.logmean", &p.LatencyLogMean},
		{"simulator.latency.logsigma", &p.LatencyLogSigma},
		{"simulator.latency.min", &p.LatencyMinMS},
		{"simulator.latency.max", &p.LatencyMaxMS},
		{"simulator.tail.entry", &p.TailEntryProbability},
		{"simulator.tail.mean", &p.TailMeanMS},
		{"simulator.tail.max", &p.TailMaxMS},
		{"simulator.timeout.overshoot", &p.TimeoutOvershootMaxMS},
		{"simulator.timeout.missing", &p.MissingProbabilityGivenTimeout},
	}
}

func (p ParameterSet) clamped() ParameterSet {
	p.LatencyLogSigma = clamp(p.LatencyLogSigma, sigmaMin, sigmaMax)
	p.TailEntryProbability = clamp(p.TailEntryProbability, tailEntryMin, tailEntryMax)
	if p.TailMaxMS > tailMaxCapMS {
		p.TailMaxMS = tailMaxCapMS
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Fingerprint derives a short stable hash of the parameter set for log
// correlation: sha256 over "name=value" lines in sorted key order.
func (p ParameterSet) Fingerprint() string {
	fields := map[string]string{
		"profile":                           p.Profile,
		"background_missing_probability":    formatField(p.BackgroundMissingProbability),
		"latency_log_mean":                  formatField(p.LatencyLogMean),
		"latency_log_sigma":                 formatField(p.LatencyLogSigma),
		"latency_min":                       formatField(p.LatencyMinMS),
		"latency_max":                       formatField(p.LatencyMaxMS),
		"tail_entry_probability":            formatField(p.TailEntryProbability),
		"tail_mean_ms":                      formatField(p.TailMeanMS),
		"tail_max_ms":                       formatField(p.TailMaxMS),
		"timeout_overshoot_max_ms":          formatField(p.TimeoutOvershootMaxMS),
		"missing_probability_given_timeout": formatField(p.MissingProbabilityGivenTimeout),
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
		b.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:12]
}

func formatField(v float64) string {
	return fmt.Sprintf("%g", v)
}
