package attitude

import (
	"math"
	"testing"
	"time"
)

type fakeCircularOrbit struct {
	radiusKm float64
	periodS  float64
	epoch    time.Time
}

func (f fakeCircularOrbit) PositionVelocityECI(t time.Time) (pos, vel [3]float64, err error) {
	theta := 2 * math.Pi * t.Sub(f.epoch).Seconds() / f.periodS
	pos = [3]float64{f.radiusKm * math.Cos(theta), f.radiusKm * math.Sin(theta), 0}
	speed := 2 * math.Pi * f.radiusKm / f.periodS
	vel = [3]float64{-speed * math.Sin(theta), speed * math.Cos(theta), 0}
	return pos, vel, nil
}

var epoch = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func TestNadir_BoresightPointsAtEarthCenter(t *testing.T) {
	orbit := fakeCircularOrbit{radiusKm: 7000, periodS: 5800, epoch: epoch}
	law := NewNadir(orbit)

	state, err := law.AttitudeAt(epoch)
	if err != nil {
		t.Fatalf("AttitudeAt: %v", err)
	}

	q := state.Orientation
	// Rotate the body +Z axis by q and confirm it points opposite the
	// satellite's position vector (toward Earth center).
	bz := rotateZ(q)
	pos, _, _ := orbit.PositionVelocityECI(epoch)
	posUnit := normalize(pos)
	dot := bz[0]*(-posUnit[0]) + bz[1]*(-posUnit[1]) + bz[2]*(-posUnit[2])
	if dot < 0.999 {
		t.Errorf("boresight . (-pos_hat) = %f, want ~1", dot)
	}
}

func rotateZ(q Quaternion) [3]float64 {
	// Rotate body +Z axis into inertial frame via q * (0,0,0,1) * q^-1,
	// expanded directly from the quaternion-to-matrix relation.
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return [3]float64{
		2 * (x*z + w*y),
		2 * (y*z - w*x),
		1 - 2*(x*x+y*y),
	}
}

func TestNadir_AngularRateMatchesOrbitalRate(t *testing.T) {
	period := 5800.0
	orbit := fakeCircularOrbit{radiusKm: 7000, periodS: period, epoch: epoch}
	law := NewNadir(orbit)

	state, err := law.AttitudeAt(epoch)
	if err != nil {
		t.Fatalf("AttitudeAt: %v", err)
	}
	rate := math.Sqrt(state.AngularRateRadS[0]*state.AngularRateRadS[0] +
		state.AngularRateRadS[1]*state.AngularRateRadS[1] +
		state.AngularRateRadS[2]*state.AngularRateRadS[2])
	want := 2 * math.Pi / period
	if math.Abs(rate-want) > 1e-9 {
		t.Errorf("angular rate = %e rad/s, want %e", rate, want)
	}
}

func TestAngleBetween_Identical(t *testing.T) {
	orbit := fakeCircularOrbit{radiusKm: 7000, periodS: 5800, epoch: epoch}
	law := NewNadir(orbit)
	s, _ := law.AttitudeAt(epoch)

	theta := AngleBetween(s, s)
	if math.Abs(theta) > 1e-9 {
		t.Errorf("AngleBetween(s, s) = %f, want 0", theta)
	}
}

func TestAngleBetween_QuarterOrbit(t *testing.T) {
	period := 5800.0
	orbit := fakeCircularOrbit{radiusKm: 7000, periodS: period, epoch: epoch}
	law := NewNadir(orbit)

	s0, _ := law.AttitudeAt(epoch)
	s1, _ := law.AttitudeAt(epoch.Add(time.Duration(period / 4 * float64(time.Second))))

	theta := AngleBetween(s0, s1)
	if math.Abs(theta-math.Pi/2) > 1e-6 {
		t.Errorf("AngleBetween after quarter orbit = %f, want pi/2", theta)
	}
}

func TestConstantSpinSlew_InterpolatesMonotonically(t *testing.T) {
	period := 5800.0
	orbit := fakeCircularOrbit{radiusKm: 7000, periodS: period, epoch: epoch}
	law := NewNadir(orbit)

	s0, _ := law.AttitudeAt(epoch)
	s1, _ := law.AttitudeAt(epoch.Add(time.Duration(period / 4 * float64(time.Second))))

	slewDur := 30 * time.Second
	slew := &ConstantSpinSlew{
		Start: epoch, End: epoch.Add(slewDur),
		StartState: s0, EndState: s1,
	}

	last := 0.0
	for i := 0; i <= 10; i++ {
		frac := time.Duration(i) * slewDur / 10
		state, err := slew.AttitudeAt(epoch.Add(frac))
		if err != nil {
			t.Fatalf("AttitudeAt: %v", err)
		}
		covered := AngleBetween(s0, state)
		if covered < last-1e-9 {
			t.Errorf("slew angle not monotonically increasing: step %d covered=%f < last=%f", i, covered, last)
		}
		last = covered
	}
}

func TestConstantSpinSlew_ClampsOutsideRange(t *testing.T) {
	orbit := fakeCircularOrbit{radiusKm: 7000, periodS: 5800, epoch: epoch}
	law := NewNadir(orbit)
	s0, _ := law.AttitudeAt(epoch)
	s1, _ := law.AttitudeAt(epoch.Add(10 * time.Second))

	slew := &ConstantSpinSlew{Start: epoch, End: epoch.Add(10 * time.Second), StartState: s0, EndState: s1}

	before, _ := slew.AttitudeAt(epoch.Add(-5 * time.Second))
	if before.Orientation != s0.Orientation {
		t.Error("AttitudeAt before Start should clamp to StartState")
	}
	after, _ := slew.AttitudeAt(epoch.Add(50 * time.Second))
	if after.Orientation != s1.Orientation {
		t.Error("AttitudeAt after End should clamp to EndState")
	}
}

func TestSlerp_Endpoints(t *testing.T) {
	a := Quaternion{W: 1}
	b := Quaternion{W: 0, X: 0, Y: 0, Z: 1}

	got0 := Slerp(a, b, 0)
	if math.Abs(got0.Dot(a)-1) > 1e-9 {
		t.Errorf("Slerp(a,b,0) = %v, want a", got0)
	}
	got1 := Slerp(a, b, 1)
	if math.Abs(got1.Dot(b)-1) > 1e-9 {
		t.Errorf("Slerp(a,b,1) = %v, want b", got1)
	}
}

func TestTargetGroundPointing_BoresightHitsTarget(t *testing.T) {
	orbit := fakeCircularOrbit{radiusKm: 7000, periodS: 5800, epoch: epoch}
	law := NewTargetGroundPointing(orbit, 0, 0, 0)

	state, err := law.AttitudeAt(epoch)
	if err != nil {
		t.Fatalf("AttitudeAt: %v", err)
	}
	bz := rotateZ(state.Orientation)

	pos, _, _ := orbit.PositionVelocityECI(epoch)
	target := law.targetPositionECI(epoch)
	toTarget := normalize([3]float64{target[0] - pos[0], target[1] - pos[1], target[2] - pos[2]})

	dot := bz[0]*toTarget[0] + bz[1]*toTarget[1] + bz[2]*toTarget[2]
	if dot < 0.999 {
		t.Errorf("boresight . target direction = %f, want ~1", dot)
	}
}
