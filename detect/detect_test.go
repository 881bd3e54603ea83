package detect

import (
	"testing"
	"time"

	"github.com/agileobs/planner/orbit"
	"github.com/agileobs/planner/site"
	"github.com/agileobs/planner/timewindow"
)

var epoch = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

func testPropagator(t *testing.T) *orbit.Propagator {
	t.Helper()
	p, err := orbit.NewPropagator(orbit.Elements{
		AltitudeKm:                600,
		InclinationDeg:             97.6,
		AscendingNodeLongitudeDeg: 30,
		Epoch:                     epoch,
	})
	if err != nil {
		t.Fatalf("NewPropagator: %v", err)
	}
	return p
}

func TestCoded_DefaultsStepAndTol(t *testing.T) {
	d := Coded("X", func(time.Time) float64 { return 1 }, 0, 0)
	if d.Step != checkInterval {
		t.Errorf("Step = %v, want default %v", d.Step, checkInterval)
	}
	if d.Tol != convergence {
		t.Errorf("Tol = %v, want default %v", d.Tol, convergence)
	}
}

func TestPropagate_AlwaysTrueYieldsNoEvents(t *testing.T) {
	p := testPropagator(t)
	d := Coded("ALWAYS", func(time.Time) float64 { return 1 }, time.Minute, time.Second)
	h, _ := timewindow.New(epoch, epoch.Add(time.Hour))

	events := d.Propagate(p, h)
	if len(events) != 0 {
		t.Errorf("got %d events for a constantly-true function, want 0", len(events))
	}
}

func TestPropagate_SingleTransition(t *testing.T) {
	p := testPropagator(t)
	mid := epoch.Add(30 * time.Minute)
	g := func(t time.Time) float64 {
		if t.Before(mid) {
			return -1
		}
		return 1
	}
	d := Coded("HALF", g, time.Minute, time.Second)
	h, _ := timewindow.New(epoch, epoch.Add(time.Hour))

	events := d.Propagate(p, h)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !events[0].IsStart {
		t.Error("expected a start event")
	}
	if diff := events[0].At.Sub(mid); diff < -2*time.Second || diff > 2*time.Second {
		t.Errorf("event time = %v, want close to %v", events[0].At, mid)
	}
}

func TestVisibilityFunc_TransitionsOverPass(t *testing.T) {
	p := testPropagator(t)
	target := &site.Site{Name: "Target", LatDeg: 45, LonDeg: 10, AltitudeM: 0}
	g := VisibilityFunc(p, target, 10)
	d := Coded("VIS", g, 2*time.Minute, time.Second)
	h, _ := timewindow.New(epoch, epoch.Add(3*time.Hour))

	events := d.Propagate(p, h)
	// Over a few orbits, the detector should see at least one rise and set.
	if len(events) == 0 {
		t.Skip("no visibility pass sampled in this window for the synthetic geometry")
	}
	for i := 1; i < len(events); i++ {
		if events[i].At.Before(events[i-1].At) {
			t.Errorf("events not sorted: %v before %v", events[i].At, events[i-1].At)
		}
	}
}

func TestSunIncidenceFunc_ReturnsFiniteSeries(t *testing.T) {
	p := testPropagator(t)
	target := &site.Site{Name: "Target", LatDeg: 0, LonDeg: 0, AltitudeM: 0}
	g := SunIncidenceFunc(p, target, 80)

	for i := 0; i < 10; i++ {
		v := g(epoch.Add(time.Duration(i) * 10 * time.Minute))
		if v != v { // NaN check
			t.Fatalf("SunIncidenceFunc returned NaN at step %d", i)
		}
	}
}

func TestNonGlareFunc_ReturnsFiniteSeries(t *testing.T) {
	p := testPropagator(t)
	target := &site.Site{Name: "Target", LatDeg: 0, LonDeg: 0, AltitudeM: 0}
	g := NonGlareFunc(p, target, 50)

	for i := 0; i < 10; i++ {
		v := g(epoch.Add(time.Duration(i) * 10 * time.Minute))
		if v != v {
			t.Fatalf("NonGlareFunc returned NaN at step %d", i)
		}
	}
}
