// Package cinematic assembles a satellite's scheduled observations into a
// strict, gap-free chronological sequence of attitude legs — nadir,
// observation, and the slews that connect them — and validates that every
// slew leg actually has enough wall-clock time to complete.
package cinematic

import (
	"fmt"
	"sort"
	"time"

	"github.com/agileobs/planner/agility"
	"github.com/agileobs/planner/attitude"
	"github.com/agileobs/planner/schedule"
	"github.com/agileobs/planner/timewindow"
)

// Plan is the strict chronological leg sequence covering a mission horizon.
type Plan []attitude.Leg

func attitudeAt(law attitude.Law, t time.Time) (attitude.State, error) {
	return law.AttitudeAt(t)
}

// Assemble builds the cinematic plan from a scheduled observation map: an
// opening nadir leg, a slew into the first observation, every observation
// connected to the next by either a direct slew or a slew-out/rest/slew-in
// sequence when the gap between them is wide enough to coast in nadir, and
// a closing slew back to nadir. sMax is the guard band the scheduler used
// to separate reservations — it must be the same value here so every slew
// this function inserts has exactly the room the scheduler promised it.
func Assemble(obsPlan schedule.Plan, horizon timewindow.Horizon, nadir attitude.Law, sMax time.Duration) (Plan, error) {
	obs := make([]attitude.Leg, 0, len(obsPlan))
	for _, leg := range obsPlan {
		obs = append(obs, leg)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Start.Before(obs[j].Start) })

	for i := range obs {
		obs[i].Kind = attitude.ObservationLeg
		if obs[i].Name == "" {
			obs[i].Name = fmt.Sprintf("Observation_%d", i+1)
		}
	}

	if len(obs) == 0 {
		return Plan{{
			Start: horizon.Start, End: horizon.End,
			Law: nadir, Name: "Nadir_Law_1", Kind: attitude.NadirLeg,
		}}, nil
	}

	var plan Plan

	// The scheduler only guards the time *after* each observation (§4.3), so
	// an observation may legitimately start less than S_max after the
	// horizon opens; clamp rather than fail; the opening slew simply gets
	// whatever room is actually available.
	firstSlewStart := obs[0].Start.Add(-sMax)
	if firstSlewStart.Before(horizon.Start) {
		firstSlewStart = horizon.Start
	}
	plan = append(plan, attitude.Leg{
		Start: horizon.Start, End: firstSlewStart,
		Law: nadir, Name: "Nadir_Law_1", Kind: attitude.NadirLeg,
	})

	startNadirState, err := attitudeAt(nadir, firstSlewStart)
	if err != nil {
		return nil, fmt.Errorf("cinematic: evaluating nadir law at %s: %w", firstSlewStart, err)
	}
	firstObsState, err := attitudeAt(obs[0].Law, obs[0].Start)
	if err != nil {
		return nil, fmt.Errorf("cinematic: evaluating %s law at start: %w", obs[0].Name, err)
	}
	plan = append(plan, attitude.Leg{
		Start: firstSlewStart, End: obs[0].Start,
		Law:           &attitude.ConstantSpinSlew{Start: firstSlewStart, End: obs[0].Start, StartState: startNadirState, EndState: firstObsState},
		Name:          "Slew_Nadir_to_O_1",
		Kind:          attitude.SlewLeg,
		StartAttitude: startNadirState,
		EndAttitude:   firstObsState,
	})

	for i, o := range obs {
		plan = append(plan, o)

		if i == len(obs)-1 {
			continue
		}
		next := obs[i+1]
		gap := next.Start.Sub(o.End)

		endState, err := attitudeAt(o.Law, o.End)
		if err != nil {
			return nil, fmt.Errorf("cinematic: evaluating %s law at end: %w", o.Name, err)
		}
		nextStartState, err := attitudeAt(next.Law, next.Start)
		if err != nil {
			return nil, fmt.Errorf("cinematic: evaluating %s law at start: %w", next.Name, err)
		}

		if gap > 2*sMax {
			outEnd := o.End.Add(sMax)
			nadirState, err := attitudeAt(nadir, o.End)
			if err != nil {
				return nil, fmt.Errorf("cinematic: evaluating nadir law at %s: %w", o.End, err)
			}
			plan = append(plan, attitude.Leg{
				Start: o.End, End: outEnd,
				Law:           &attitude.ConstantSpinSlew{Start: o.End, End: outEnd, StartState: endState, EndState: nadirState},
				Name:          fmt.Sprintf("Slew_%s_to_Nadir", o.Name),
				Kind:          attitude.SlewLeg,
				StartAttitude: endState,
				EndAttitude:   nadirState,
			})

			interEnd := next.Start.Add(-sMax)
			plan = append(plan, attitude.Leg{
				Start: outEnd, End: interEnd,
				Law: nadir, Name: fmt.Sprintf("Nadir_Law_Inter_%d", i+1), Kind: attitude.NadirLeg,
			})

			interNadirState, err := attitudeAt(nadir, interEnd)
			if err != nil {
				return nil, fmt.Errorf("cinematic: evaluating nadir law at %s: %w", interEnd, err)
			}
			plan = append(plan, attitude.Leg{
				Start: interEnd, End: next.Start,
				Law:           &attitude.ConstantSpinSlew{Start: interEnd, End: next.Start, StartState: interNadirState, EndState: nextStartState},
				Name:          fmt.Sprintf("Slew_Nadir_to_%s", next.Name),
				Kind:          attitude.SlewLeg,
				StartAttitude: interNadirState,
				EndAttitude:   nextStartState,
			})
		} else {
			plan = append(plan, attitude.Leg{
				Start: o.End, End: next.Start,
				Law:           &attitude.ConstantSpinSlew{Start: o.End, End: next.Start, StartState: endState, EndState: nextStartState},
				Name:          fmt.Sprintf("Slew_%s_to_%s", o.Name, next.Name),
				Kind:          attitude.SlewLeg,
				StartAttitude: endState,
				EndAttitude:   nextStartState,
			})
		}
	}

	last := obs[len(obs)-1]
	lastEndState, err := attitudeAt(last.Law, last.End)
	if err != nil {
		return nil, fmt.Errorf("cinematic: evaluating %s law at end: %w", last.Name, err)
	}
	closeSlewEnd := last.End.Add(sMax)
	if closeSlewEnd.After(horizon.End) {
		closeSlewEnd = horizon.End
	}
	closeNadirState, err := attitudeAt(nadir, closeSlewEnd)
	if err != nil {
		return nil, fmt.Errorf("cinematic: evaluating nadir law at %s: %w", closeSlewEnd, err)
	}
	plan = append(plan, attitude.Leg{
		Start: last.End, End: closeSlewEnd,
		Law:           &attitude.ConstantSpinSlew{Start: last.End, End: closeSlewEnd, StartState: lastEndState, EndState: closeNadirState},
		Name:          fmt.Sprintf("Slew_%s_to_Nadir", last.Name),
		Kind:          attitude.SlewLeg,
		StartAttitude: lastEndState,
		EndAttitude:   closeNadirState,
	})
	plan = append(plan, attitude.Leg{
		Start: closeSlewEnd, End: horizon.End,
		Law: nadir, Name: "Nadir_Law_2", Kind: attitude.NadirLeg,
	})

	return plan, nil
}

// AttitudeAt implements attitude.Law over the whole plan: it dispatches to
// whichever leg's interval contains t (clamping to the first or last leg
// outside the plan's span), so a Plan can be fed directly to an attitude
// ephemeris writer without the caller re-deriving leg boundaries.
func (p Plan) AttitudeAt(t time.Time) (attitude.State, error) {
	if len(p) == 0 {
		return attitude.State{}, fmt.Errorf("cinematic: empty plan has no attitude")
	}
	for _, leg := range p {
		if !t.Before(leg.Start) && t.Before(leg.End) {
			return leg.Law.AttitudeAt(t)
		}
	}
	if t.Before(p[0].Start) {
		return p[0].Law.AttitudeAt(p[0].Start)
	}
	last := p[len(p)-1]
	return last.Law.AttitudeAt(last.End)
}

// Violation describes one leg that failed the slew-duration feasibility
// check.
type Violation struct {
	LegName  string
	Required time.Duration
	Actual   time.Duration
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: actual duration %v does not exceed required %v", v.LegName, v.Actual, v.Required)
}

// Validate walks the plan and checks every slew leg's wall-clock duration
// against the theoretical slew duration its boundary attitudes demand.
func Validate(plan Plan, agi agility.Model) (ok bool, violations []Violation) {
	ok = true
	for _, leg := range plan {
		if leg.Kind != attitude.SlewLeg {
			continue
		}
		actual := leg.End.Sub(leg.Start)
		theta := agility.AngleBetween(leg.StartAttitude, leg.EndAttitude)
		required := agi.SlewDuration(theta)
		if actual <= required {
			ok = false
			violations = append(violations, Violation{LegName: leg.Name, Required: required, Actual: actual})
		}
	}
	return ok, violations
}
