// Command planmission runs a full agile Earth-observation mission plan:
// access computation, observation scheduling, cinematic assembly, and
// validation, for a named mission configuration and a CSV target list.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/agileobs/planner/constants"
	"github.com/agileobs/planner/elements"
	"github.com/agileobs/planner/mission"
	"github.com/agileobs/planner/orbit"
	"github.com/agileobs/planner/site"
	"github.com/agileobs/planner/units"
	"github.com/agileobs/planner/vts"
)

// altitudeDetector is a diagnostic orbit.EventDetector reporting height above
// EarthRadiusKm, recorded in the Diagnostics of every sample of the bounded
// ephemeris; the OEM file itself lists only position and velocity.
type altitudeDetector struct{ prop *orbit.Propagator }

func (d altitudeDetector) Name() string { return "altitude_km" }

func (d altitudeDetector) Eval(t time.Time) float64 {
	pos, _, err := d.prop.PositionVelocityECI(t)
	if err != nil {
		return math.NaN()
	}
	r := math.Sqrt(pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2])
	return r - orbit.EarthRadiusKm
}

func main() {
	missionName := flag.String("mission", "default", "named mission configuration bundle")
	targetsPath := flag.String("targets", "", "CSV file of ground targets (name,score,lat_deg,lon_deg,alt_m)")
	parallel := flag.Bool("parallel", false, "compute site access in parallel")

	epoch := time.Now().UTC()
	bundle := constants.Default(epoch)
	applyFlags := constants.RegisterFlags(flag.CommandLine, &bundle)
	flag.Parse()
	applyFlags()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *targetsPath == "" {
		log.Error("a -targets CSV file is required")
		os.Exit(1)
	}
	sites, err := site.LoadCSV(*targetsPath)
	if err != nil {
		log.Error("loading targets", "error", err)
		os.Exit(1)
	}
	if len(sites) == 0 || len(sites) > 100 {
		log.Error("target count out of range", "count", len(sites), "min", 1, "max", 100)
		os.Exit(1)
	}

	result, err := mission.Run(*missionName, sites, bundle.StartDate, *parallel, log)
	if err != nil {
		log.Error("mission run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Mission %q: %d/%d targets scheduled, score = %.1f\n",
		*missionName, len(result.Scheduled), len(sites), result.Score)

	el := orbit.Elements{
		AltitudeKm:                bundle.AltitudeKm,
		Eccentricity:              bundle.MeanEccentricity,
		InclinationDeg:            bundle.InclinationDeg,
		AscendingNodeLongitudeDeg: bundle.AscendingNodeLongitudeDeg,
		Epoch:                     bundle.StartDate,
	}
	prop, err := orbit.NewPropagator(el)
	if err == nil {
		pos, vel, err := prop.PositionVelocityECI(bundle.StartDate)
		if err == nil {
			osc := elements.FromStateVector(pos, vel, orbit.GMEarthKm3S2)
			apoapsis := units.NewDistance(osc.ApoapsisDistanceKm)
			periapsis := units.NewDistance(osc.PeriapsisDistanceKm)
			fmt.Printf("Orbit: period %.1f min, apoapsis %.1f km, periapsis %.1f km\n",
				osc.PeriodDays*24*60, apoapsis.Km(), periapsis.Km())
		}
		prop.AddEventDetector(altitudeDetector{prop: prop})
	}

	dir := bundle.VTSDirectory
	if dir != "" {
		if err := vts.WritePOI(sites, dir); err != nil {
			log.Warn("writing POI file", "error", err)
		}
		if err := vts.WriteMEM(result.Plan, dir); err != nil {
			log.Warn("writing MEM file", "error", err)
		}
		if err == nil {
			eph, ephErr := prop.BoundedEphemeris(bundle.StartDate, bundle.EndDate, bundle.VTSEphemerisStep)
			if ephErr != nil {
				log.Warn("building VTS ephemeris", "error", ephErr)
			} else {
				if err := vts.WriteOEM(eph, dir); err != nil {
					log.Warn("writing OEM file", "error", err)
				}
				if err := vts.WriteAEM(eph, result.Plan, dir); err != nil {
					log.Warn("writing AEM file", "error", err)
				}
			}
		}
	}
}
