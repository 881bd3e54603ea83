// Package schedule assigns each ground site at most one observation slot:
// a greedy, score-prioritized placement of fixed-duration observation legs
// into the gaps left by higher-priority targets, guarded by the satellite's
// worst-case slew duration so the resulting plan is always cinematically
// feasible without re-checking pairwise slew times.
package schedule

import (
	"log/slog"
	"sort"
	"time"

	"github.com/agileobs/planner/access"
	"github.com/agileobs/planner/attitude"
	"github.com/agileobs/planner/site"
)

// Plan maps each scheduled site to its single observation leg.
type Plan map[*site.Site]attitude.Leg

type reservation struct {
	start, end time.Time
	site       *site.Site
}

// Schedule runs the greedy, score-prioritized scheduler described in the
// package doc. prop supplies the orbital state TargetGroundPointing laws
// need to evaluate the observation attitude at each scheduled slot.
func Schedule(plan access.Plan, sites []*site.Site, tObs, sMax time.Duration, prop attitude.StateProvider, log *slog.Logger) Plan {
	ordered := make([]*site.Site, len(sites))
	copy(ordered, sites)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	var reservations []reservation
	result := make(Plan)

	for _, s := range ordered {
		tl := plan[s]
		if tl == nil {
			continue
		}
		scheduled := false
		for _, w := range tl.Phenomena() {
			start, ok := tryPlace(reservations, w.Start, w.End, tObs, sMax)
			if !ok {
				continue
			}
			reservations = append(reservations, reservation{start: start, end: start.Add(tObs + sMax), site: s})
			result[s] = attitude.Leg{
				Start: start,
				End:   start.Add(tObs),
				Law:   attitude.NewTargetGroundPointing(prop, s.LatDeg, s.LonDeg, s.AltitudeM/1000.0),
				Name:  s.Name,
				Kind:  attitude.ObservationLeg,
			}
			log.Info("scheduled observation", "target", s.Name, "start", start, "phase", "schedule")
			scheduled = true
			break
		}
		if !scheduled {
			log.Debug("no feasible placement", "target", s.Name, "phase", "schedule")
		}
	}
	return result
}

// tryPlace searches an access window [aStart, aEnd] for the first gap, among
// the guarded reservations overlapping it, that fits a tObs+sMax slot. When
// no reservation overlaps the window, only tObs has to fit, at aStart.
func tryPlace(reservations []reservation, aStart, aEnd time.Time, tObs, sMax time.Duration) (time.Time, bool) {
	var p []reservation
	for _, r := range reservations {
		if r.start.Before(aEnd) && r.end.After(aStart) {
			p = append(p, r)
		}
	}
	sort.Slice(p, func(i, j int) bool { return p[i].start.Before(p[j].start) })

	if len(p) == 0 {
		if !aStart.Add(tObs).After(aEnd) {
			return aStart, true
		}
		return time.Time{}, false
	}

	if start, ok := fitsGap(aStart, p[0].start, aStart, aEnd, tObs, sMax); ok {
		return start, true
	}
	for i := 0; i < len(p)-1; i++ {
		if start, ok := fitsGap(p[i].end, p[i+1].start, aStart, aEnd, tObs, sMax); ok {
			return start, true
		}
	}
	if start, ok := fitsGap(p[len(p)-1].end, aEnd, aStart, aEnd, tObs, sMax); ok {
		return start, true
	}
	return time.Time{}, false
}

// fitsGap clips [gapStart, gapEnd] to the access window and reports whether
// a tObs+sMax guarded slot fits at the clipped gap's start.
func fitsGap(gapStart, gapEnd, aStart, aEnd time.Time, tObs, sMax time.Duration) (time.Time, bool) {
	start := gapStart
	if aStart.After(start) {
		start = aStart
	}
	end := gapEnd
	if aEnd.Before(end) {
		end = aEnd
	}
	if end.Sub(start) >= tObs+sMax {
		return start, true
	}
	return time.Time{}, false
}
