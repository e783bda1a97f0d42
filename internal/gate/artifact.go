// JSON result artifacts consumed by the external pass/fail harness.
package gate

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"alertgate-sim/internal/metrics"
)

// RunArtifact is the flat single-run result object. Every field is present
// and numeric so the harness can type-check it blindly.
type RunArtifact struct {
	P95MS       float64 `json:"p95_ms"`
	TimeoutRate float64 `json:"timeout_rate"`
	MissingRate float64 `json:"missing_rate"`
	Delivered   int     `json:"delivered"`
	Total       int     `json:"total"`
	Timeouts    int     `json:"timeouts"`
	Missings    int     `json:"missings"`
}

// SweepCell extends RunArtifact with the modeled load axes of its grid cell.
type SweepCell struct {
	RunArtifact
	Intensity   float64 `json:"intensity"`
	Concurrency int     `json:"concurrency"`
}

// NewRunArtifact converts a Summary. An infinite P95 (zero deliveries) is
// clamped to MaxFloat64 so the artifact stays a plain JSON number while any
// finite threshold still fails against it.
func NewRunArtifact(s Summary) RunArtifact {
	p95 := s.P95LatencyMS
	if math.IsInf(p95, 1) {
		p95 = math.MaxFloat64
	}
	return RunArtifact{
		P95MS:       p95,
		TimeoutRate: s.TimeoutRate,
		MissingRate: s.MissingRate,
		Delivered:   s.Delivered,
		Total:       s.Total,
		Timeouts:    s.Timeouts,
		Missings:    s.Missings,
	}
}

// NewSweepCell converts one sweep point.
func NewSweepCell(p Point) SweepCell {
	return SweepCell{
		RunArtifact: NewRunArtifact(p.Summary),
		Intensity:   p.Intensity,
		Concurrency: p.Concurrency,
	}
}

const runArtifactSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["p95_ms", "timeout_rate", "missing_rate", "delivered", "total", "timeouts", "missings"],
	"properties": {
		"p95_ms":       {"type": "number", "minimum": 0},
		"timeout_rate": {"type": "number", "minimum": 0, "maximum": 1},
		"missing_rate": {"type": "number", "minimum": 0, "maximum": 1},
		"delivered":    {"type": "integer", "minimum": 0},
		"total":        {"type": "integer", "minimum": 0},
		"timeouts":     {"type": "integer", "minimum": 0},
		"missings":     {"type": "integer", "minimum": 0}
	}
}`

const sweepArtifactSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["p95_ms", "timeout_rate", "missing_rate", "delivered", "total", "timeouts", "missings", "intensity", "concurrency"],
		"properties": {
			"intensity":   {"type": "number", "minimum": 0},
			"concurrency": {"type": "integer", "minimum": 0}
		}
	}
}`

var (
	runSchema   = jsonschema.MustCompileString("run-artifact.schema.json", runArtifactSchema)
	sweepSchema = jsonschema.MustCompileString("sweep-artifact.schema.json", sweepArtifactSchema)
)

// EncodeRunArtifact marshals the artifact and checks it against the embedded
// schema, so a shape regression is caught before anything reaches disk.
func EncodeRunArtifact(a RunArtifact) ([]byte, error) {
	return encodeValidated(a, runSchema)
}

// EncodeSweepArtifact marshals the ordered cell list and schema-checks it.
func EncodeSweepArtifact(cells []SweepCell) ([]byte, error) {
	return encodeValidated(cells, sweepSchema)
}

func encodeValidated(v any, schema *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("re-decode artifact: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("artifact schema check: %w", err)
	}
	return data, nil
}

// WriteArtifact writes encoded artifact bytes atomically.
func WriteArtifact(path string, data []byte) error {
	if err := metrics.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// WriteSamples writes retained raw latencies as a flat JSON number array.
func WriteSamples(path string, samples []float64) error {
	if samples == nil {
		samples = []float64{}
	}
	data, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("marshal samples: %w", err)
	}
	if err := metrics.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write samples %s: %w", path, err)
	}
	return nil
}
