// Layered configuration document: YAML file overlay, environment overlay,
// compiled-in defaults. Lookups are dotted-path addressable; the first layer
// holding a key wins.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that belong to this process.
// ALERTGATE_SIMULATOR_TAIL_MEAN addresses the key "simulator.tail.mean".
const EnvPrefix = "ALERTGATE_"

// Document answers dotted-path configuration lookups across the three layers.
type Document struct {
	file     map[string]any
	env      map[string]string
	defaults map[string]any
}

// Load builds a Document from an optional YAML overlay file, the process
// environment, and the compiled-in defaults. Loading never fails: an
// unreadable, malformed, or schema-invalid overlay is logged and ignored so
// configuration can never block a measurement.
func Load(path, schemaPath string, logger *slog.Logger) *Document {
	doc := &Document{
		file:     map[string]any{},
		env:      envOverlay(os.Environ()),
		defaults: defaultValues(),
	}
	if path == "" {
		return doc
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Info("config overlay unreadable, using environment and defaults",
			"path", path, "error", err)
		return doc
	}
	if schemaPath != "" {
		if err := ValidateWithCue(path, schemaPath); err != nil {
			logger.Info("config overlay failed schema validation, ignoring overlay",
				"path", path, "schema", schemaPath, "error", err)
			return doc
		}
	}

	var nested map[string]any
	if err := yaml.Unmarshal(data, &nested); err != nil {
		logger.Info("config overlay is not valid YAML, ignoring overlay",
			"path", path, "error", err)
		return doc
	}
	flatten("", nested, doc.file)
	logger.Info("config overlay loaded", "path", path, "keys", len(doc.file))
	return doc
}

// envOverlay extracts prefixed variables from environ entries ("K=V"),
// stripping the prefix and mapping underscores to dots, lower-cased.
func envOverlay(environ []string) map[string]string {
	out := map[string]string{}
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, EnvPrefix), "_", "."))
		if key != "" {
			out[key] = value
		}
	}
	return out
}

// flatten rewrites nested YAML maps into dotted keys; scalar and list leaves
// are stored as decoded.
func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = v
	}
}

// String returns the string value at key, if any layer holds it.
func (d *Document) String(key string) (string, bool) {
	if v, ok := d.file[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	if s, ok := d.env[key]; ok {
		return s, true
	}
	if v, ok := d.defaults[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// Float returns the numeric value at key, coercing YAML ints and env strings.
func (d *Document) Float(key string) (float64, bool) {
	if v, ok := d.file[key]; ok {
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	if s, ok := d.env[key]; ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	if v, ok := d.defaults[key]; ok {
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// Int returns the integer value at key.
func (d *Document) Int(key string) (int, bool) {
	if f, ok := d.Float(key); ok {
		return int(f), true
	}
	return 0, false
}

// Floats returns the numeric list at key. Environment values are
// comma-separated ("0.2,0.5,0.8").
func (d *Document) Floats(key string) ([]float64, bool) {
	if v, ok := d.file[key]; ok {
		if list, ok := toFloatList(v); ok {
			return list, true
		}
	}
	if s, ok := d.env[key]; ok {
		if list, ok := parseFloatList(s); ok {
			return list, true
		}
	}
	if v, ok := d.defaults[key]; ok {
		if list, ok := toFloatList(v); ok {
			return list, true
		}
	}
	return nil, false
}

// Ints returns the integer list at key.
func (d *Document) Ints(key string) ([]int, bool) {
	list, ok := d.Floats(key)
	if !ok {
		return nil, false
	}
	out := make([]int, len(list))
	for i, f := range list {
		out[i] = int(f)
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toFloatList(v any) ([]float64, bool) {
	switch list := v.(type) {
	case []float64:
		return list, true
	case []int:
		out := make([]float64, len(list))
		for i, n := range list {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, 0, len(list))
		for _, item := range list {
			f, ok := toFloat(item)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

func parseFloatList(s string) ([]float64, bool) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// defaultValues is the compiled-in bottom layer. Simulator parameters are
// deliberately absent: their fallback is the baseline preset applied by the
// parameter resolver.
func defaultValues() map[string]any {
	return map[string]any{
		"simulator.profile":    "baseline",
		"gate.trials":          600,
		"gate.timeout":         1500.0,
		"gate.p95.max":         1500.0,
		"gate.timeoutrate.max": 0.02,
		"gate.missingrate.max": 0.005,
		"sweep.intensities":    []float64{0.2, 0.5, 0.8},
		"sweep.concurrencies":  []int{1, 5, 10},
		"metrics.path":         "alert_metrics.prom",
	}
}
