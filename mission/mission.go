// Package mission orchestrates a full planning run: access computation,
// observation scheduling, cinematic assembly, and validation, over one
// named configuration bundle and target list. It owns the system's error
// taxonomy and the final observation score.
package mission

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/agileobs/planner/access"
	"github.com/agileobs/planner/agility"
	"github.com/agileobs/planner/attitude"
	"github.com/agileobs/planner/cinematic"
	"github.com/agileobs/planner/constants"
	"github.com/agileobs/planner/orbit"
	"github.com/agileobs/planner/schedule"
	"github.com/agileobs/planner/site"
	"github.com/agileobs/planner/timewindow"
)

// ConfigError reports a mission configuration that cannot be run at all:
// an unknown mission name, an inverted horizon, or degenerate geometry.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "mission: invalid configuration: " + e.Reason }

// PropagationFailure reports that the orbital propagator could not produce
// a state for a given target, so that target was omitted from the access
// plan rather than failing the whole run.
type PropagationFailure struct {
	Target string
	Err    error
}

func (e *PropagationFailure) Error() string {
	return fmt.Sprintf("mission: propagation failed for %s: %v", e.Target, e.Err)
}

func (e *PropagationFailure) Unwrap() error { return e.Err }

// SchedulingInfeasible reports that a target had access windows but none
// of them had room for an observation once higher-priority targets had
// claimed their slots.
type SchedulingInfeasible struct {
	Target string
	Reason string
}

func (e *SchedulingInfeasible) Error() string {
	return fmt.Sprintf("mission: %s could not be scheduled: %s", e.Target, e.Reason)
}

// CinematicViolation reports that the assembled cinematic plan failed
// validation: one or more slew legs do not have enough time to complete.
type CinematicViolation struct {
	Violations []cinematic.Violation
}

func (e *CinematicViolation) Error() string {
	return fmt.Sprintf("mission: cinematic plan has %d infeasible slew(s)", len(e.Violations))
}

// Result is the output of a completed planning run.
type Result struct {
	Access    access.Plan
	Scheduled schedule.Plan
	Plan      cinematic.Plan
	Score     float64
}

// Run executes the full pipeline for the named configuration bundle and
// target sites: access computation, scheduling, cinematic assembly, and
// validation. parallel selects access.PlanAll's concurrency mode.
func Run(missionName string, sites []*site.Site, epoch time.Time, parallel bool, log *slog.Logger) (*Result, error) {
	bundle, ok := constants.Named(missionName, epoch)
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown mission %q", missionName)}
	}

	horizon, err := timewindow.New(bundle.StartDate, bundle.EndDate)
	if err != nil {
		return nil, &ConfigError{Reason: errors.WithMessage(err, "invalid mission horizon").Error()}
	}

	el := orbit.Elements{
		AltitudeKm:                bundle.AltitudeKm,
		Eccentricity:              bundle.MeanEccentricity,
		InclinationDeg:            bundle.InclinationDeg,
		AscendingNodeLongitudeDeg: bundle.AscendingNodeLongitudeDeg,
		Epoch:                     epoch,
	}
	prop, err := orbit.NewPropagator(el)
	if err != nil {
		return nil, &ConfigError{Reason: errors.WithMessage(err, "invalid orbital elements").Error()}
	}

	accessCfg := access.Config{
		SensorHalfApertureDeg: bundle.PointingCapacityDeg,
		MaxSunIncidenceDeg:    bundle.MaxSunIncidenceDeg,
		MaxSunPhaseAngleDeg:   bundle.MaxSunPhaseAngleDeg,
		MinDuration:           bundle.IntegrationTime,
	}
	accessLog := log.With("phase", "access")
	accessPlan, err := access.PlanAll(el, sites, horizon, accessCfg, parallel, accessLog)
	if err != nil {
		return nil, errors.WithMessage(err, "computing access")
	}

	agi := agility.Model{MaxRateRadPerSec: bundle.MaxRateRadPerSec, MaxAccelRadPerSec2: bundle.MaxAccelRadPerSec2}
	halfApertureRad := bundle.PointingCapacityDeg * (math.Pi / 180)
	sMax := agi.MaxSlewDuration(halfApertureRad)

	scheduleLog := log.With("phase", "schedule")
	scheduled := schedule.Schedule(accessPlan, sites, bundle.IntegrationTime, sMax, prop, scheduleLog)
	for _, s := range sites {
		if _, ok := scheduled[s]; !ok {
			if _, hasAccess := accessPlan[s]; hasAccess && len(accessPlan[s].Phenomena()) > 0 {
				scheduleLog.Info("target not scheduled", "target", s.Name, "reason", "no feasible placement remained")
			}
		}
	}

	nadir := attitude.NewNadir(prop)
	plan, err := cinematic.Assemble(scheduled, horizon, nadir, sMax)
	if err != nil {
		return nil, errors.WithMessage(err, "assembling cinematic plan")
	}

	ok2, violations := cinematic.Validate(plan, agi)
	if !ok2 {
		log.Error("cinematic plan failed validation", "violations", len(violations))
		return nil, &CinematicViolation{Violations: violations}
	}

	return &Result{
		Access:    accessPlan,
		Scheduled: scheduled,
		Plan:      plan,
		Score:     Score(scheduled),
	}, nil
}

// Score sums the score of every distinct site that was actually
// scheduled. It is only meaningful once the caller has confirmed the
// cinematic plan is valid.
func Score(scheduled schedule.Plan) float64 {
	var total float64
	for s := range scheduled {
		total += s.Score
	}
	return total
}
