// Package detect turns continuous geometric switching functions —
// visibility, sun incidence, non-glare — into the coded start/stop events a
// timeline is built from. Event times are refined via the same
// bracket-then-bisect search used elsewhere in this codebase for almanac
// work, here driving access rather than rise/set computation.
package detect

import (
	"math"
	"time"

	"github.com/agileobs/planner/coord"
	"github.com/agileobs/planner/orbit"
	"github.com/agileobs/planner/search"
	"github.com/agileobs/planner/site"
	"github.com/agileobs/planner/timeline"
	"github.com/agileobs/planner/timescale"
	"github.com/agileobs/planner/timewindow"
)

const checkInterval = 120 * time.Second
const convergence = 100 * time.Microsecond

// Detector evaluates a signed switching function g over a horizon and
// reports every time it crosses zero as a coded start/stop event: g > 0
// means Code's condition holds.
type Detector struct {
	Code string
	G    func(t time.Time) float64
	Step time.Duration
	Tol  time.Duration
}

// Coded builds a Detector. If step or tol are zero they default to the
// 120s check interval and 100µs convergence threshold used throughout this
// codebase's event detection.
func Coded(code string, g func(t time.Time) float64, step, tol time.Duration) Detector {
	if step <= 0 {
		step = checkInterval
	}
	if tol <= 0 {
		tol = convergence
	}
	return Detector{Code: code, G: g, Step: step, Tol: tol}
}

// sign maps g's value to the discrete state search.FindDiscrete tracks:
// 1 when the condition holds (g > 0), 0 otherwise.
func sign(v float64) int {
	if v > 0 {
		return 1
	}
	return 0
}

// Propagate finds every start/stop transition of the detector's switching
// function across horizon. prop is accepted (rather than relying solely on
// closures baked into G) so a caller can be certain the propagator backing
// G is the same one driving the rest of the access computation; Propagate
// uses it only to fail fast if the propagator cannot produce a state at the
// start of the horizon.
func (d Detector) Propagate(prop *orbit.Propagator, horizon timewindow.Horizon) []timeline.CodedEvent {
	if _, _, err := prop.PositionVelocityECI(horizon.Start); err != nil {
		return nil
	}

	startJD := timescale.TimeToJDUTC(horizon.Start)
	endJD := timescale.TimeToJDUTC(horizon.End)
	stepDays := d.Step.Seconds() / timescale.SecPerDay
	tolDays := d.Tol.Seconds() / timescale.SecPerDay

	f := func(jd float64) int {
		return sign(d.G(timescale.JDUTCToTime(jd)))
	}

	raw, err := search.FindDiscrete(startJD, endJD, stepDays, f, tolDays)
	if err != nil {
		return nil
	}

	events := make([]timeline.CodedEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, timeline.CodedEvent{
			At:      timescale.JDUTCToTime(e.T),
			Code:    d.Code,
			IsStart: e.NewValue == 1,
		})
	}
	return events
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func siteECI(s *site.Site, t time.Time) [3]float64 {
	jdUT1 := timescale.TTToUT1(timescale.UTCToTT(timescale.TimeToJDUTC(t)))
	ux, uy, uz := coord.GeodeticToICRF(s.LatDeg, s.LonDeg, jdUT1)
	r := 6378.137 + s.AltitudeM/1000.0
	return [3]float64{ux * r, uy * r, uz * r}
}

// VisibilityFunc builds the switching function for geometric visibility of
// a ground site from the satellite: positive when the site lies inside the
// satellite's sensor cone (its off-nadir angle from the satellite's
// boresight is within halfApertureDeg, the sensor's half-aperture /
// pointing capacity) and the satellite is not masked by the Earth's limb.
// The two clearances are combined with math.Min, so a single zero-crossing
// search finds whichever constraint binds first; the masking term is a
// step of +1 or -1, not a continuous clearance.
func VisibilityFunc(prop *orbit.Propagator, s *site.Site, halfApertureDeg float64) func(time.Time) float64 {
	return func(t time.Time) float64 {
		pos, _, err := prop.PositionVelocityECI(t)
		if err != nil {
			return -1
		}
		target := siteECI(s, t)

		maskClearance := 1.0
		if coord.IsBehindEarth(target, pos) {
			maskClearance = -1.0
		}

		boresight := [3]float64{-pos[0], -pos[1], -pos[2]}
		toTarget := sub(target, pos)
		offNadirDeg := coord.SeparationAngle(boresight, toTarget)
		coneClearanceDeg := halfApertureDeg - offNadirDeg

		return math.Min(maskClearance, coneClearanceDeg)
	}
}

// SunIncidenceFunc builds the switching function for the Sun incidence
// constraint at the target: positive when the Sun's angle of incidence on
// the ground at the target (measured from the local zenith) stays within
// maxIncidenceDeg, i.e. the target is acceptably lit and not in its own
// terminator shadow.
func SunIncidenceFunc(prop *orbit.Propagator, s *site.Site, maxIncidenceDeg float64) func(time.Time) float64 {
	return func(t time.Time) float64 {
		if _, _, err := prop.PositionVelocityECI(t); err != nil {
			return -1
		}
		target := siteECI(s, t)
		sun := orbit.SunPositionECI(t)
		toSun := sub(sun, target)
		zenith := target
		incidence := coord.SeparationAngle(toSun, zenith)
		return maxIncidenceDeg - incidence
	}
}

// NonGlareFunc builds the switching function for the anti-glare constraint:
// positive when the Sun-target-satellite phase angle stays below
// maxPhaseAngleDeg, ruling out specular-glint geometries where the
// satellite looks straight down the Sun's reflection off the target.
func NonGlareFunc(prop *orbit.Propagator, s *site.Site, maxPhaseAngleDeg float64) func(time.Time) float64 {
	return func(t time.Time) float64 {
		pos, _, err := prop.PositionVelocityECI(t)
		if err != nil {
			return -1
		}
		target := siteECI(s, t)
		sun := orbit.SunPositionECI(t)
		obsToTarget := sub(target, pos)
		sunToTarget := sub(target, sun)
		// The three-bodies detector measures the Sun-target-satellite angle
		// at the target apex; supplementing it recovers the usual
		// "larger is more grazing-free" convention.
		phase := 180 - coord.SeparationAngle(obsToTarget, sunToTarget)
		return maxPhaseAngleDeg - phase
	}
}
