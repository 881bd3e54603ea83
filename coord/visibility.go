package coord

import (
	"math"

	"github.com/agileobs/planner/geometry"
)

const earthRadiusKm = 6371.0 // mean radius in km

// IsSunlit returns true if a position (in km, ICRF, relative to Earth center)
// is illuminated by the Sun.
//
// posKm is the object's geocentric position in km (e.g., a satellite).
// sunPosKm is the Sun's geocentric position in km.
//
// Uses geometric shadow test: the object is in shadow if the line from the
// object to the Sun intersects Earth's sphere.
func IsSunlit(posKm, sunPosKm [3]float64) bool {
	// Vector from object to Sun
	toSun := [3]float64{
		sunPosKm[0] - posKm[0],
		sunPosKm[1] - posKm[1],
		sunPosKm[2] - posKm[2],
	}

	// Earth center relative to object position (= -posKm)
	earthCenter := [3]float64{-posKm[0], -posKm[1], -posKm[2]}

	near, far := geometry.IntersectLineSphere(toSun, earthCenter, earthRadiusKm)
	if math.IsNaN(near) {
		return true
	}

	sunDist := math.Sqrt(toSun[0]*toSun[0] + toSun[1]*toSun[1] + toSun[2]*toSun[2])
	if sunDist == 0 {
		return false
	}

	if far < 0 || near > sunDist {
		return true // intersection is behind the object or past the Sun
	}

	return false
}

// IsBehindEarth returns true if the target position is geometrically behind
// Earth as seen from the observer position.
//
// Both positions are geocentric ICRF vectors in km. The target is "behind Earth"
// if the line of sight from observer to target passes through Earth's sphere.
func IsBehindEarth(observerPosKm, targetPosKm [3]float64) bool {
	toTarget := [3]float64{
		targetPosKm[0] - observerPosKm[0],
		targetPosKm[1] - observerPosKm[1],
		targetPosKm[2] - observerPosKm[2],
	}

	earthCenter := [3]float64{-observerPosKm[0], -observerPosKm[1], -observerPosKm[2]}

	near, _ := geometry.IntersectLineSphere(toTarget, earthCenter, earthRadiusKm)
	if math.IsNaN(near) {
		return false
	}

	targetDist := math.Sqrt(toTarget[0]*toTarget[0] + toTarget[1]*toTarget[1] + toTarget[2]*toTarget[2])
	if targetDist == 0 {
		return false
	}

	return near >= 0 && near <= targetDist
}
