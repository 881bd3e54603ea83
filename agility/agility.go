// Package agility models the satellite's attitude agility: the
// bounded-acceleration slew profile that bounds how fast the satellite can
// reorient, and hence how close two observations can be scheduled.
package agility

import (
	"math"
	"time"

	"github.com/agileobs/planner/attitude"
)

// Model is a triangular/trapezoidal bounded-acceleration slew profile: the
// satellite accelerates at MaxAccelRadPerSec2 up to MaxRateRadPerSec, coasts
// if the slew angle demands it, then decelerates symmetrically to a stop.
type Model struct {
	MaxRateRadPerSec   float64
	MaxAccelRadPerSec2 float64
}

// rampAngle is the angle covered while accelerating from rest to
// MaxRateRadPerSec (and, by symmetry, while decelerating back to rest).
func (m Model) rampAngle() float64 {
	return 0.5 * m.MaxRateRadPerSec * m.MaxRateRadPerSec / m.MaxAccelRadPerSec2
}

// SlewDuration returns how long a slew of thetaRad radians takes: a
// triangular profile (accelerate then immediately decelerate, never
// reaching MaxRateRadPerSec) for small angles, a trapezoidal profile
// (accelerate, coast, decelerate) for larger ones.
func (m Model) SlewDuration(thetaRad float64) time.Duration {
	theta := math.Abs(thetaRad)
	if theta == 0 {
		return 0
	}

	rampTheta := m.rampAngle()
	var seconds float64
	if theta <= 2*rampTheta {
		// Triangular: peak rate reached is sqrt(theta*accel), each half
		// covers theta/2.
		seconds = 2 * math.Sqrt(theta/m.MaxAccelRadPerSec2)
	} else {
		rampTime := m.MaxRateRadPerSec / m.MaxAccelRadPerSec2
		coastTheta := theta - 2*rampTheta
		coastTime := coastTheta / m.MaxRateRadPerSec
		seconds = 2*rampTime + coastTime
	}
	return time.Duration(seconds * float64(time.Second))
}

// MaxSlewDuration returns the worst-case slew duration between two targets
// that are each individually accessible: the largest possible separation
// between two points within halfApertureRad of nadir is the angle spanning
// both edges of the pointing cone, 2*halfApertureRad.
func (m Model) MaxSlewDuration(halfApertureRad float64) time.Duration {
	return m.SlewDuration(2 * halfApertureRad)
}

// AngleBetween returns the rotation angle, in radians, between two
// attitude states.
func AngleBetween(a, b attitude.State) float64 {
	return attitude.AngleBetween(a, b)
}
