// Package orbit propagates a satellite's position and velocity forward from
// a set of classical (Keplerian) orbital elements using analytic two-body
// mechanics: Newton-Raphson solution of Kepler's equation for the elliptic
// case (0 <= e < 1; parabolic and hyperbolic elements are rejected). The
// same root-solving structure that kepler.Orbit used for heliocentric
// bodies is kept here, re-centered on Earth and re-expressed in
// time.Time/km/s rather than Julian-date/AU/day.
package orbit

import (
	"fmt"
	"math"
	"time"

	"github.com/agileobs/planner/timescale"
)

// GMEarthKm3S2 is the Earth geocentric gravitational parameter, km^3/s^2.
const GMEarthKm3S2 = 398600.4418

// EarthRadiusKm is the mean equatorial radius used for the decay check.
const EarthRadiusKm = 6378.137

// Elements holds a classical orbital element set, referenced to the Earth
// equatorial (ICRF-aligned, near-TEME) frame at Epoch.
type Elements struct {
	AltitudeKm                float64 // circular-equivalent altitude above EarthRadiusKm; ignored if SemiMajorAxisKm is set
	SemiMajorAxisKm           float64 // if zero, derived from AltitudeKm assuming a circular orbit
	Eccentricity              float64
	InclinationDeg            float64
	AscendingNodeLongitudeDeg float64
	ArgPeriapsisDeg           float64
	MeanAnomalyDeg            float64
	Epoch                     time.Time
}

func (e Elements) semiMajorAxisKm() float64 {
	if e.SemiMajorAxisKm != 0 {
		return e.SemiMajorAxisKm
	}
	return EarthRadiusKm + e.AltitudeKm
}

// PropagationFailure indicates the propagator could not produce a physical
// state at the requested time: an orbit that has decayed into the Earth, or
// one whose elements describe a non-physical configuration.
type PropagationFailure struct {
	At     time.Time
	Reason string
}

func (e *PropagationFailure) Error() string {
	return fmt.Sprintf("orbit: propagation failed at %s: %s", e.At.Format(time.RFC3339), e.Reason)
}

// EventDetector is a diagnostic scalar function sampled alongside the
// primary state whenever the Propagator builds a bounded Ephemeris. It plays
// the same role a registered event detector plays against a real
// propagator: a black-box function of time the propagator evaluates without
// knowing what it means.
type EventDetector interface {
	Name() string
	Eval(t time.Time) float64
}

// Propagator evaluates position and velocity for a fixed Keplerian element
// set, plus a low-precision Sun position used by the illumination and
// glare detectors. GM defaults to GMEarthKm3S2 when left zero.
type Propagator struct {
	Elements Elements
	GM       float64

	detectors []EventDetector

	rot [3][3]float64 // perifocal -> equatorial rotation, built once
	a   float64
	e   float64
	n   float64 // mean motion, rad/s
	p   float64 // semi-latus rectum, km
	ok  bool
}

// NewPropagator builds a Propagator from a fixed element set, precomputing
// the perifocal-to-equatorial rotation and mean motion.
func NewPropagator(el Elements) (*Propagator, error) {
	p := &Propagator{Elements: el, GM: GMEarthKm3S2}
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Propagator) init() error {
	if p.GM == 0 {
		p.GM = GMEarthKm3S2
	}
	a := p.Elements.semiMajorAxisKm()
	e := p.Elements.Eccentricity
	if a <= 0 {
		return &PropagationFailure{At: p.Elements.Epoch, Reason: "non-positive semi-major axis"}
	}
	if e < 0 || e >= 1 {
		return &PropagationFailure{At: p.Elements.Epoch, Reason: "eccentricity outside supported elliptic range [0,1)"}
	}
	perigeeKm := a * (1 - e)
	if perigeeKm <= EarthRadiusKm {
		return &PropagationFailure{At: p.Elements.Epoch, Reason: "perigee below Earth's surface"}
	}

	p.a = a
	p.e = e
	p.p = a * (1 - e*e)
	p.n = math.Sqrt(p.GM / (a * a * a))

	incl := p.Elements.InclinationDeg * math.Pi / 180
	raan := p.Elements.AscendingNodeLongitudeDeg * math.Pi / 180
	argp := p.Elements.ArgPeriapsisDeg * math.Pi / 180

	cO, sO := math.Cos(raan), math.Sin(raan)
	ci, si := math.Cos(incl), math.Sin(incl)
	cw, sw := math.Cos(argp), math.Sin(argp)

	p.rot = [3][3]float64{
		{cO*cw - sO*sw*ci, -cO*sw - sO*cw*ci, sO * si},
		{sO*cw + cO*sw*ci, -sO*sw + cO*cw*ci, -cO * si},
		{sw * si, cw * si, ci},
	}
	p.ok = true
	return nil
}

// AddEventDetector registers a diagnostic scalar function that is carried
// alongside every sample the propagator produces in BoundedEphemeris.
func (p *Propagator) AddEventDetector(d EventDetector) {
	p.detectors = append(p.detectors, d)
}

// Detectors returns the registered diagnostic detectors.
func (p *Propagator) Detectors() []EventDetector {
	return p.detectors
}

func (p *Propagator) meanAnomalyAt(t time.Time) float64 {
	dtSec := t.Sub(p.Elements.Epoch).Seconds()
	m0 := p.Elements.MeanAnomalyDeg * math.Pi / 180
	m := m0 + p.n*dtSec
	return math.Mod(m, 2*math.Pi)
}

// solveElliptic solves Kepler's equation M = E - e*sin(E) for the
// eccentric anomaly via Newton-Raphson, then returns true anomaly and the
// orbital radius. Mirrors the high-eccentricity initial-guess branch used
// by the heliocentric solver this was adapted from.
func (p *Propagator) solveElliptic(m float64) (nu, r float64) {
	m = math.Mod(m+2*math.Pi, 2*math.Pi)

	var eAnom float64
	if p.e > 0.8 {
		eAnom = math.Pi
	} else {
		eAnom = m
	}
	for i := 0; i < 50; i++ {
		f := eAnom - p.e*math.Sin(eAnom) - m
		fPrime := 1 - p.e*math.Cos(eAnom)
		delta := f / fPrime
		eAnom -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}

	cosE, sinE := math.Cos(eAnom), math.Sin(eAnom)
	r = p.a * (1 - p.e*cosE)
	sinNu := math.Sqrt(1-p.e*p.e) * sinE / (1 - p.e*cosE)
	cosNu := (cosE - p.e) / (1 - p.e*cosE)
	nu = math.Atan2(sinNu, cosNu)
	return nu, r
}

// PositionVelocityECI returns the satellite's position and velocity, in km
// and km/s, in the equatorial frame the elements were defined in (TEME-like;
// callers needing a true inertial frame should rotate via coord.TEMEToICRF).
func (p *Propagator) PositionVelocityECI(t time.Time) (posKm, velKm [3]float64, err error) {
	if !p.ok {
		return posKm, velKm, &PropagationFailure{At: t, Reason: "propagator not initialized"}
	}
	m := p.meanAnomalyAt(t)
	nu, r := p.solveElliptic(m)
	if r <= EarthRadiusKm {
		return posKm, velKm, &PropagationFailure{At: t, Reason: "orbit radius decayed below Earth's surface"}
	}

	cosNu, sinNu := math.Cos(nu), math.Sin(nu)
	xPF := r * cosNu
	yPF := r * sinNu

	h := math.Sqrt(p.GM * p.p)
	vxPF := -(p.GM / h) * sinNu
	vyPF := (p.GM / h) * (p.e + cosNu)

	for i := 0; i < 3; i++ {
		posKm[i] = p.rot[i][0]*xPF + p.rot[i][1]*yPF
		velKm[i] = p.rot[i][0]*vxPF + p.rot[i][1]*vyPF
	}
	return posKm, velKm, nil
}

// SunPositionECI returns a low-precision geocentric Sun position vector in
// km, accurate to a few arcminutes — ample for illumination and glare
// geometry, which only need the Sun's direction.
func SunPositionECI(t time.Time) [3]float64 {
	jdTT := timescale.UTCToTT(timescale.TimeToJDUTC(t))
	d := jdTT - 2451545.0

	gDeg := math.Mod(357.529+0.98560028*d, 360)
	qDeg := math.Mod(280.459+0.98564736*d, 360)
	lDeg := qDeg + 1.915*math.Sin(gDeg*math.Pi/180) + 0.020*math.Sin(2*gDeg*math.Pi/180)

	distAU := 1.00014 - 0.01671*math.Cos(gDeg*math.Pi/180) - 0.00014*math.Cos(2*gDeg*math.Pi/180)
	const auKm = 149597870.7
	distKm := distAU * auKm

	epsDeg := 23.439 - 0.00000036*d
	l := lDeg * math.Pi / 180
	eps := epsDeg * math.Pi / 180

	return [3]float64{
		distKm * math.Cos(l),
		distKm * math.Sin(l) * math.Cos(eps),
		distKm * math.Sin(l) * math.Sin(eps),
	}
}

// EphemerisSample is one time-tagged state in a bounded propagation run.
type EphemerisSample struct {
	At          time.Time
	PositionKm  [3]float64
	VelocityKm  [3]float64
	Diagnostics map[string]float64
}

// Ephemeris is a regularly-sampled trajectory over a bounded interval,
// suitable for consumption by ephemeris-file writers.
type Ephemeris struct {
	Samples []EphemerisSample
}

// BoundedEphemeris samples the propagator at a fixed step across
// [start, end], recording the value of every registered EventDetector
// alongside each state. Returns a PropagationFailure if any sample point
// falls outside the regime the propagator can represent.
func (p *Propagator) BoundedEphemeris(start, end time.Time, step time.Duration) (Ephemeris, error) {
	if step <= 0 {
		return Ephemeris{}, fmt.Errorf("orbit: step must be positive")
	}
	var eph Ephemeris
	for t := start; !t.After(end); t = t.Add(step) {
		pos, vel, err := p.PositionVelocityECI(t)
		if err != nil {
			return Ephemeris{}, err
		}
		sample := EphemerisSample{At: t, PositionKm: pos, VelocityKm: vel}
		if len(p.detectors) > 0 {
			sample.Diagnostics = make(map[string]float64, len(p.detectors))
			for _, d := range p.detectors {
				sample.Diagnostics[d.Name()] = d.Eval(t)
			}
		}
		eph.Samples = append(eph.Samples, sample)
	}
	return eph, nil
}
