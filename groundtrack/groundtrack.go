// Package groundtrack offers a secondary, SGP4-based quicklook propagator
// used to sanity-check the analytic Keplerian orbit package against a
// perturbed trajectory for a TLE carrying the same nominal elements, and to
// predict rise/culmination/set passes over a ground site from a TLE
// directly. It is a diagnostic tool, not part of the scheduling critical
// path.
package groundtrack

import (
	"math"
	"time"

	gosatellite "github.com/joshuaferrara/go-satellite"

	"github.com/agileobs/planner/coord"
	"github.com/agileobs/planner/search"
	"github.com/agileobs/planner/timescale"
)

// Sat holds a named satellite for SGP4 propagation.
type Sat struct {
	Name string
	Sat  gosatellite.Satellite
}

// NewSat builds a Sat from TLE lines using the WGS84 gravity model.
func NewSat(name, line1, line2 string) Sat {
	return Sat{
		Name: name,
		Sat:  gosatellite.TLEToSat(line1, line2, gosatellite.GravityWGS84),
	}
}

// SubPoint returns the sub-satellite point (geodetic lat/lon in degrees)
// at t.
func SubPoint(s gosatellite.Satellite, t time.Time) (latDeg, lonDeg float64) {
	year := t.Year()
	month := int(t.Month())
	day := t.Day()
	hour := t.Hour()
	min := t.Minute()
	sec := t.Second()

	pos, _ := gosatellite.Propagate(s, year, month, day, hour, min, sec)
	jd := gosatellite.JDay(year, month, day, hour, min, sec)
	gmst := gosatellite.ThetaG_JD(jd)

	_, _, latLong := gosatellite.ECIToLLA(pos, gmst)
	ll := gosatellite.LatLongDeg(latLong)

	lonDeg = math.Mod(ll.Longitude+360.0, 360.0)
	return ll.Latitude, lonDeg
}

// PositionECI returns the SGP4 position in km, converted from TEME to
// ICRF.
func PositionECI(s gosatellite.Satellite, t time.Time) [3]float64 {
	jdUT1 := timescale.TTToUT1(timescale.UTCToTT(timescale.TimeToJDUTC(t)))
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	pos, _ := gosatellite.Propagate(s, year, int(month), day, hour, min, sec)
	return coord.TEMEToICRF([3]float64{pos.X, pos.Y, pos.Z}, jdUT1)
}

// Pass event kinds returned by FindPasses.
const (
	Rise        = 0 // satellite rises above the altitude threshold
	Culmination = 1 // satellite reaches maximum altitude during the pass
	Set         = 2 // satellite sets below the altitude threshold
)

// PassEvent is a single rise, culmination, or set event for a ground site.
type PassEvent struct {
	T      float64 // TT Julian date of the event
	Kind   int
	AltDeg float64
}

// Time converts the event's TT Julian date to a calendar time.Time (via
// UT1, which differs from UTC by under a second), for display purposes.
func (e PassEvent) Time() time.Time {
	jdUT1 := timescale.TTToUT1(e.T)
	y, mo, d, h, mi, s := jdToCalendar(jdUT1)
	return time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
}

// KindString names the event kind for display.
func (e PassEvent) KindString() string {
	switch e.Kind {
	case Rise:
		return "RISE"
	case Culmination:
		return "CULMINATION"
	case Set:
		return "SET"
	default:
		return "UNKNOWN"
	}
}

// FindPasses finds rise, culmination, and set events for sat as seen from a
// ground site in the given TT Julian date range.
func FindPasses(sat Sat, latDeg, lonDeg, startJD, endJD, minAltDeg float64) ([]PassEvent, error) {
	const stepDays = 1.0 / 1440.0 // 1 minute; LEO passes are rarely under ~2 minutes.

	altFunc := satAltitudeFunc(sat, latDeg, lonDeg)

	discreteFunc := func(ttJD float64) int {
		if altFunc(ttJD) >= minAltDeg {
			return 1
		}
		return 0
	}
	transitions, err := search.FindDiscrete(startJD, endJD, stepDays, discreteFunc, 0)
	if err != nil {
		return nil, err
	}

	var events []PassEvent
	for i := 0; i < len(transitions); i++ {
		e := transitions[i]
		if e.NewValue != 1 {
			continue
		}
		riseT := e.T
		events = append(events, PassEvent{T: riseT, Kind: Rise, AltDeg: altFunc(riseT)})

		setT := endJD
		if i+1 < len(transitions) && transitions[i+1].NewValue == 0 {
			setT = transitions[i+1].T
			i++

			maxima, err := search.FindMaxima(riseT, setT, stepDays, altFunc, 0)
			if err == nil && len(maxima) > 0 {
				best := maxima[0]
				for _, m := range maxima[1:] {
					if m.Value > best.Value {
						best = m
					}
				}
				events = append(events, PassEvent{T: best.T, Kind: Culmination, AltDeg: best.Value})
			}
			events = append(events, PassEvent{T: setT, Kind: Set, AltDeg: altFunc(setT)})
		}
	}
	return events, nil
}

func satAltitudeFunc(sat Sat, latDeg, lonDeg float64) func(float64) float64 {
	return func(ttJD float64) float64 {
		jdUT1 := timescale.TTToUT1(ttJD)
		y, mo, d, h, mi, s := jdToCalendar(jdUT1)
		pos, _ := gosatellite.Propagate(sat.Sat, y, mo, d, h, mi, s)

		satICRF := coord.TEMEToICRF([3]float64{pos.X, pos.Y, pos.Z}, jdUT1)
		ox, oy, oz := coord.GeodeticToICRF(latDeg, lonDeg, jdUT1)
		topoICRF := [3]float64{satICRF[0] - ox, satICRF[1] - oy, satICRF[2] - oz}

		alt, _, _ := coord.Altaz(topoICRF, latDeg, lonDeg, jdUT1)
		return alt
	}
}

// jdToCalendar converts a Julian date to calendar components (Meeus,
// Astronomical Algorithms).
func jdToCalendar(jd float64) (year, month, day, hour, min, sec int) {
	jd += 0.5
	z := math.Floor(jd)
	f := jd - z

	var a float64
	if z < 2299161 {
		a = z
	} else {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}

	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	dayFrac := b - d - math.Floor(30.6001*e) + f
	day = int(dayFrac)
	fracDay := dayFrac - float64(day)

	if e < 14 {
		month = int(e) - 1
	} else {
		month = int(e) - 13
	}
	if month > 2 {
		year = int(c) - 4716
	} else {
		year = int(c) - 4715
	}

	totalSec := fracDay * 86400.0
	hour = int(totalSec / 3600.0)
	totalSec -= float64(hour) * 3600.0
	min = int(totalSec / 60.0)
	sec = int(totalSec - float64(min)*60.0)
	return
}
