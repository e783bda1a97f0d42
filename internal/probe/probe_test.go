package probe

import (
	"testing"
)

func TestSample_Deterministic(t *testing.T) {
	params := DefaultPresets()[BaselineProfile]
	a := New(params, 7)
	b := New(params, 7)

	for i := 0; i < 1000; i++ {
		oa := a.Sample(1500)
		ob := b.Sample(1500)
		if oa != ob {
			t.Fatalf("outcome %d diverged: %+v vs %+v", i, oa, ob)
		}
	}
}

func TestSample_DifferentSeedsDiverge(t *testing.T) {
	params := DefaultPresets()[BaselineProfile]
	a := New(params, 1)
	b := New(params, 2)

	same := true
	for i := 0; i < 100; i++ {
		if a.Sample(1500) != b.Sample(1500) {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different seeds produced an identical outcome stream")
	}
}

func TestSample_ExactlyOneState(t *testing.T) {
	params := DefaultPresets()["chaos"]
	p := New(params, 11)

	for i := 0; i < 5000; i++ {
		out := p.Sample(1500)
		switch {
		case out.Delivered:
			if out.TimedOut || out.Missing {
				t.Fatalf("delivered outcome carries failure flags: %+v", out)
			}
		case out.TimedOut:
			// Missing may or may not accompany a timeout.
		case out.Missing:
			if out.TimedOut {
				t.Fatalf("silent-missing outcome flagged as timeout: %+v", out)
			}
		default:
			t.Fatalf("outcome in no state: %+v", out)
		}
	}
}

func TestSample_TimeoutLatencyWithinOvershoot(t *testing.T) {
	params := DefaultPresets()[BaselineProfile]
	params.TailEntryProbability = 0.1 // upper clamp bound, makes timeouts frequent
	p := New(params, 3)

	const threshold = 1500.0
	timeouts := 0
	for i := 0; i < 5000; i++ {
		out := p.Sample(threshold)
		if !out.TimedOut {
			continue
		}
		timeouts++
		if out.LatencyMS < threshold || out.LatencyMS > threshold+params.TimeoutOvershootMaxMS {
			t.Fatalf("timeout latency %v outside [%v, %v]",
				out.LatencyMS, threshold, threshold+params.TimeoutOvershootMaxMS)
		}
	}
	if timeouts == 0 {
		t.Fatalf("expected timeout outcomes at entry probability 0.1")
	}
}

func TestSample_DegenerateConstantBase(t *testing.T) {
	params := DefaultPresets()[BaselineProfile]
	params.LatencyMinMS = 100
	params.LatencyMaxMS = 100
	params.TailMeanMS = 0
	params.BackgroundMissingProbability = 0
	params.TailEntryProbability = 0.0001
	p := New(params, 5)

	for i := 0; i < 2000; i++ {
		out := p.Sample(1500)
		if !out.Delivered {
			continue
		}
		if out.LatencyMS != 100 {
			t.Fatalf("degenerate base draw = %v, want constant 100", out.LatencyMS)
		}
	}
}

func TestSample_LatencyWithinClampedRange(t *testing.T) {
	params := DefaultPresets()[BaselineProfile]
	p := New(params, 9)

	for i := 0; i < 5000; i++ {
		out := p.Sample(1500)
		if !out.Delivered {
			continue
		}
		if out.LatencyMS < params.LatencyMinMS {
			t.Fatalf("delivered latency %v below clamp %v", out.LatencyMS, params.LatencyMinMS)
		}
		if out.LatencyMS > params.LatencyMaxMS+params.TailMaxMS {
			t.Fatalf("delivered latency %v above base+tail cap %v",
				out.LatencyMS, params.LatencyMaxMS+params.TailMaxMS)
		}
	}
}
