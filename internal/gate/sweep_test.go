package gate

import (
	"math"
	"reflect"
	"testing"

	"alertgate-sim/internal/probe"
)

func TestRunSweep_GridOrderAndScaling(t *testing.T) {
	params := probe.DefaultPresets()[probe.BaselineProfile]
	p := probe.New(params, 8)

	intensities := []float64{0.2, 0.5}
	concurrencies := []int{1, 2}
	points := RunSweep(p, 600, 1500, intensities, concurrencies, discardLogger())

	if len(points) != 4 {
		t.Fatalf("got %d cells, want 4", len(points))
	}
	wantOrder := []struct {
		intensity   float64
		concurrency int
	}{
		{0.2, 1}, {0.2, 2}, {0.5, 1}, {0.5, 2},
	}
	for i, want := range wantOrder {
		if points[i].Intensity != want.intensity || points[i].Concurrency != want.concurrency {
			t.Errorf("cell %d = (%v, %d), want (%v, %d)",
				i, points[i].Intensity, points[i].Concurrency, want.intensity, want.concurrency)
		}
		wantTrials := int(math.Round(600 * want.intensity))
		if points[i].Total != wantTrials {
			t.Errorf("cell %d trials = %d, want %d", i, points[i].Total, wantTrials)
		}
	}
}

func TestRunSweep_MinimumOneTrial(t *testing.T) {
	params := probe.DefaultPresets()[probe.BaselineProfile]
	p := probe.New(params, 8)

	points := RunSweep(p, 1, 1500, []float64{0.2}, []int{1}, discardLogger())
	if points[0].Total != 1 {
		t.Errorf("trials = %d, want floor of 1", points[0].Total)
	}
}

// Scenario: intensities [0.2, 0.5, 0.8] x concurrencies [1, 5, 10]. Cells
// sharing an intensity must agree on P95 within 1000ms of each other.
func TestRunSweep_SameIntensityConsistency(t *testing.T) {
	params := probe.DefaultPresets()[probe.BaselineProfile]
	p := probe.New(params, 42)

	intensities := []float64{0.2, 0.5, 0.8}
	concurrencies := []int{1, 5, 10}
	points := RunSweep(p, 600, 1500, intensities, concurrencies, discardLogger())

	byIntensity := map[float64][]float64{}
	for _, pt := range points {
		if math.IsInf(pt.P95LatencyMS, 1) {
			t.Fatalf("cell (%v, %d) has infinite P95", pt.Intensity, pt.Concurrency)
		}
		byIntensity[pt.Intensity] = append(byIntensity[pt.Intensity], pt.P95LatencyMS)
	}
	for intensity, values := range byIntensity {
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi-lo > 1000 {
			t.Errorf("intensity %v P95 spread = %v, want <= 1000", intensity, hi-lo)
		}
	}
}

func TestRunSweep_DeterministicAcrossRuns(t *testing.T) {
	params := probe.DefaultPresets()[probe.BaselineProfile]
	a := RunSweep(probe.New(params, 13), 300, 1500, []float64{0.5, 1.0}, []int{1, 2}, discardLogger())
	b := RunSweep(probe.New(params, 13), 300, 1500, []float64{0.5, 1.0}, []int{1, 2}, discardLogger())

	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical sweeps diverged:\n%+v\n%+v", a, b)
	}
}
