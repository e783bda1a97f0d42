package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alertgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad_FileOverlay(t *testing.T) {
	path := writeOverlay(t, `
simulator:
  profile: degraded
  tail:
    mean: 80
gate:
  trials: 250
sweep:
  intensities: [0.1, 0.9]
`)
	doc := Load(path, "", discardLogger())

	if got, ok := doc.String("simulator.profile"); !ok || got != "degraded" {
		t.Errorf("simulator.profile = %q, %v; want degraded", got, ok)
	}
	if got, ok := doc.Float("simulator.tail.mean"); !ok || got != 80 {
		t.Errorf("simulator.tail.mean = %v, %v; want 80", got, ok)
	}
	if got, ok := doc.Int("gate.trials"); !ok || got != 250 {
		t.Errorf("gate.trials = %v, %v; want 250", got, ok)
	}
	list, ok := doc.Floats("sweep.intensities")
	if !ok || len(list) != 2 || list[0] != 0.1 || list[1] != 0.9 {
		t.Errorf("sweep.intensities = %v, %v; want [0.1 0.9]", list, ok)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	doc := Load(filepath.Join(t.TempDir(), "nope.yaml"), "", discardLogger())

	if got, ok := doc.Int("gate.trials"); !ok || got != 600 {
		t.Errorf("gate.trials = %v, %v; want default 600", got, ok)
	}
	if got, ok := doc.String("simulator.profile"); !ok || got != "baseline" {
		t.Errorf("simulator.profile = %q, %v; want baseline", got, ok)
	}
}

func TestLoad_MalformedYAMLIgnored(t *testing.T) {
	path := writeOverlay(t, "gate: [broken\n")
	doc := Load(path, "", discardLogger())

	if got, ok := doc.Float("gate.timeout"); !ok || got != 1500 {
		t.Errorf("gate.timeout = %v, %v; want default 1500", got, ok)
	}
}

func TestLoad_SchemaRejectionIgnoresOverlay(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "alertgate.yaml")
	if err := os.WriteFile(cfgPath, []byte("gate:\n  trials: -5\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	schemaPath := filepath.Join(dir, "alertgate.cue")
	schema := "{\n\tgate?: {\n\t\ttrials?: int & >0\n\t}\n}\n"
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}

	doc := Load(cfgPath, schemaPath, discardLogger())
	if got, _ := doc.Int("gate.trials"); got != 600 {
		t.Errorf("gate.trials = %v; want default 600 after schema rejection", got)
	}
}

func TestEnvOverlay_KeyMapping(t *testing.T) {
	env := envOverlay([]string{
		"ALERTGATE_SIMULATOR_TAIL_MEAN=75",
		"ALERTGATE_GATE_TIMEOUT=900",
		"UNRELATED=1",
		"ALERTGATE_=empty",
	})
	if env["simulator.tail.mean"] != "75" {
		t.Errorf("simulator.tail.mean = %q; want 75", env["simulator.tail.mean"])
	}
	if env["gate.timeout"] != "900" {
		t.Errorf("gate.timeout = %q; want 900", env["gate.timeout"])
	}
	if _, ok := env["unrelated"]; ok {
		t.Errorf("unexpected unprefixed key picked up")
	}
	if len(env) != 2 {
		t.Errorf("env overlay = %v; want exactly 2 keys", env)
	}
}

func TestLookupPrecedence(t *testing.T) {
	t.Setenv("ALERTGATE_GATE_TRIALS", "200")
	t.Setenv("ALERTGATE_GATE_TIMEOUT", "900")
	t.Setenv("ALERTGATE_SWEEP_INTENSITIES", "0.3,0.6")

	path := writeOverlay(t, "gate:\n  trials: 100\n")
	doc := Load(path, "", discardLogger())

	// File beats env.
	if got, _ := doc.Int("gate.trials"); got != 100 {
		t.Errorf("gate.trials = %v; want file value 100", got)
	}
	// Env beats defaults.
	if got, _ := doc.Float("gate.timeout"); got != 900 {
		t.Errorf("gate.timeout = %v; want env value 900", got)
	}
	list, ok := doc.Floats("sweep.intensities")
	if !ok || len(list) != 2 || list[0] != 0.3 || list[1] != 0.6 {
		t.Errorf("sweep.intensities = %v, %v; want [0.3 0.6]", list, ok)
	}
	// Defaults still answer untouched keys.
	if got, _ := doc.Float("gate.missingrate.max"); got != 0.005 {
		t.Errorf("gate.missingrate.max = %v; want default 0.005", got)
	}
}

func TestInts_FromDefaults(t *testing.T) {
	doc := Load("", "", discardLogger())
	list, ok := doc.Ints("sweep.concurrencies")
	if !ok || len(list) != 3 || list[0] != 1 || list[2] != 10 {
		t.Errorf("sweep.concurrencies = %v, %v; want [1 5 10]", list, ok)
	}
}
