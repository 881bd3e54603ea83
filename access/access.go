// Package access computes, for every ground site in a target list, the
// timeline of intervals over which an agile Earth-observation satellite
// can actually observe it: within the sensor's pointing cone, acceptably
// lit, and clear of specular glint — the combined timeline an observation
// scheduler draws candidate windows from.
package access

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/agileobs/planner/detect"
	"github.com/agileobs/planner/orbit"
	"github.com/agileobs/planner/site"
	"github.com/agileobs/planner/timeline"
	"github.com/agileobs/planner/timewindow"
)

// Plan maps each site to the timeline of when it is observable.
type Plan map[*site.Site]*timeline.Timeline

// Config bounds the three geometric constraints access computation checks.
type Config struct {
	// SensorHalfApertureDeg is the sensor's half-aperture (pointing
	// capacity): a site is only visible while its off-nadir angle from the
	// satellite's boresight is within this bound.
	SensorHalfApertureDeg float64
	MaxSunIncidenceDeg    float64
	MaxSunPhaseAngleDeg   float64
	MinDuration           time.Duration
	Step                  time.Duration
	Tol                   time.Duration
}

// PlanOne computes the combined visibility & sun-incidence & non-glare
// timeline for a single site.
func PlanOne(prop *orbit.Propagator, s *site.Site, horizon timewindow.Horizon, cfg Config) *timeline.Timeline {
	vis := detect.Coded("VIS", detect.VisibilityFunc(prop, s, cfg.SensorHalfApertureDeg), cfg.Step, cfg.Tol)
	sun := detect.Coded("SUN", detect.SunIncidenceFunc(prop, s, cfg.MaxSunIncidenceDeg), cfg.Step, cfg.Tol)
	glare := detect.Coded("GLARE", detect.NonGlareFunc(prop, s, cfg.MaxSunPhaseAngleDeg), cfg.Step, cfg.Tol)

	visTL := timeline.FromEvents(horizon, vis.Propagate(prop, horizon))
	sunTL := timeline.FromEvents(horizon, sun.Propagate(prop, horizon))
	glareTL := timeline.FromEvents(horizon, glare.Propagate(prop, horizon))

	combined := visTL.ApplyAnd(sunTL).ApplyAnd(glareTL)
	if cfg.MinDuration > 0 {
		combined = combined.FilterByMinDuration(cfg.MinDuration)
	}
	return &combined
}

// PlanAll computes access for every site. When parallel is true, sites are
// distributed across a worker pool sized to GOMAXPROCS, each goroutine
// building its own Propagator from el so no propagator state is shared
// across goroutines; results are collected and written to the returned
// Plan by the calling goroutine alone, which returns once every worker has
// finished. When parallel is false, sites
// are planned sequentially on the caller's goroutine.
func PlanAll(el orbit.Elements, sites []*site.Site, horizon timewindow.Horizon, cfg Config, parallel bool, log *slog.Logger) (Plan, error) {
	if !parallel {
		prop, err := orbit.NewPropagator(el)
		if err != nil {
			return nil, err
		}
		plan := make(Plan, len(sites))
		for _, s := range sites {
			log.Debug("computing access", "target", s.Name, "phase", "access")
			plan[s] = PlanOne(prop, s, horizon, cfg)
		}
		return plan, nil
	}
	return planAllParallel(el, sites, horizon, cfg, log)
}

type accessResult struct {
	s  *site.Site
	tl *timeline.Timeline
}

func planAllParallel(el orbit.Elements, sites []*site.Site, horizon timewindow.Horizon, cfg Config, log *slog.Logger) (Plan, error) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(sites) {
		workers = len(sites)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *site.Site)
	results := make(chan accessResult, len(sites))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			prop, err := orbit.NewPropagator(el)
			if err != nil {
				log.Error("worker could not build propagator", "worker", workerID, "error", err)
				return
			}
			workerLog := log.With("worker", workerID)
			for s := range jobs {
				workerLog.Debug("computing access", "target", s.Name, "phase", "access")
				results <- accessResult{s: s, tl: PlanOne(prop, s, horizon, cfg)}
			}
		}(w)
	}

	go func() {
		for _, s := range sites {
			jobs <- s
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	plan := make(Plan, len(sites))
	for r := range results {
		plan[r.s] = r.tl
	}
	return plan, nil
}
