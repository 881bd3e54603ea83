// Package constants holds the mission-wide configuration bundle: the
// orbital, geometric, and agility parameters that every other package
// needs and that a CLI invocation may override.
package constants

import (
	"flag"
	"time"
)

// Bundle is one named mission configuration.
type Bundle struct {
	StartDate time.Time
	EndDate   time.Time

	AltitudeKm                float64
	InclinationDeg            float64
	AscendingNodeLongitudeDeg float64
	MeanEccentricity          float64

	IntegrationTime time.Duration

	MaxSunIncidenceDeg  float64
	MaxSunPhaseAngleDeg float64

	// PointingCapacityDeg is the sensor's half-aperture: the largest angle
	// from boresight at which the ground point is still usable.
	PointingCapacityDeg float64

	MaxRateRadPerSec   float64
	MaxAccelRadPerSec2 float64

	VTSDirectory string
	// VTSEphemerisStep is the sampling step used when writing the OEM
	// (orbit) and AEM (attitude) visualization ephemeris files.
	VTSEphemerisStep time.Duration
}

// Default returns a reference low-Earth, near-polar mission: a ~620km
// sun-synchronous-ish orbit, arbitrary but physically sane parameters,
// running over a 24-hour horizon starting at the given epoch.
func Default(epoch time.Time) Bundle {
	return Bundle{
		StartDate:                 epoch,
		EndDate:                   epoch.Add(24 * time.Hour),
		AltitudeKm:                620,
		InclinationDeg:            97.8,
		AscendingNodeLongitudeDeg: 10,
		MeanEccentricity:          0.0012,
		IntegrationTime:           10 * time.Second,
		MaxSunIncidenceDeg:        80,
		MaxSunPhaseAngleDeg:       100,
		PointingCapacityDeg:       30,
		MaxRateRadPerSec:          0.035,
		MaxAccelRadPerSec2:        0.01,
		VTSDirectory:              "./vts-out",
		VTSEphemerisStep:          60 * time.Second,
	}
}

// Named resolves a mission configuration by name. Today only "default" is
// registered; an unknown name is the caller's to turn into a ConfigError.
func Named(name string, epoch time.Time) (Bundle, bool) {
	switch name {
	case "default", "":
		return Default(epoch), true
	default:
		return Bundle{}, false
	}
}

// RegisterFlags binds b's overridable fields to flag.FlagSet fs, returning
// a function that must be called after fs.Parse to reconcile the duration
// and string flags back into b.
func RegisterFlags(fs *flag.FlagSet, b *Bundle) func() {
	altitude := fs.Float64("altitude-km", b.AltitudeKm, "orbit altitude above the WGS84 ellipsoid, km")
	inclination := fs.Float64("inclination-deg", b.InclinationDeg, "orbit inclination, degrees")
	raan := fs.Float64("raan-deg", b.AscendingNodeLongitudeDeg, "right ascension of the ascending node, degrees")
	eccentricity := fs.Float64("eccentricity", b.MeanEccentricity, "mean eccentricity")
	maxSunIncidence := fs.Float64("max-sun-incidence-deg", b.MaxSunIncidenceDeg, "maximum acceptable solar incidence angle, degrees")
	maxSunPhase := fs.Float64("max-sun-phase-deg", b.MaxSunPhaseAngleDeg, "maximum acceptable sun-satellite-target phase angle, degrees")
	pointingCapacity := fs.Float64("pointing-capacity-deg", b.PointingCapacityDeg, "sensor half-aperture, degrees")
	maxRate := fs.Float64("max-rate-rad-s", b.MaxRateRadPerSec, "maximum body angular rate, rad/s")
	maxAccel := fs.Float64("max-accel-rad-s2", b.MaxAccelRadPerSec2, "maximum body angular acceleration, rad/s^2")
	vtsDir := fs.String("vts", b.VTSDirectory, "directory to write VTS-style visualization files to")
	vtsStep := fs.Duration("vts-step", b.VTSEphemerisStep, "sampling step for the VTS orbit/attitude ephemeris files")

	return func() {
		b.AltitudeKm = *altitude
		b.InclinationDeg = *inclination
		b.AscendingNodeLongitudeDeg = *raan
		b.MeanEccentricity = *eccentricity
		b.MaxSunIncidenceDeg = *maxSunIncidence
		b.MaxSunPhaseAngleDeg = *maxSunPhase
		b.PointingCapacityDeg = *pointingCapacity
		b.MaxRateRadPerSec = *maxRate
		b.MaxAccelRadPerSec2 = *maxAccel
		b.VTSDirectory = *vtsDir
		b.VTSEphemerisStep = *vtsStep
	}
}
