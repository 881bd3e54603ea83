// Command groundtrack prints the SGP4 sub-satellite ground track for a TLE,
// as a quicklook cross-check against the analytic Keplerian propagator used
// by the mission planner.
package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/agileobs/planner/groundtrack"
	"github.com/agileobs/planner/timescale"
)

func main() {
	name := flag.String("name", "SAT", "satellite name")
	line1 := flag.String("line1", "", "TLE line 1")
	line2 := flag.String("line2", "", "TLE line 2")
	minutes := flag.Int("minutes", 120, "duration to track, minutes")
	step := flag.Int("step", 15, "step between samples, minutes")
	siteLat := flag.Float64("site-lat-deg", math.NaN(), "ground site latitude, degrees (enables pass prediction)")
	siteLon := flag.Float64("site-lon-deg", math.NaN(), "ground site longitude, degrees (enables pass prediction)")
	minAlt := flag.Float64("min-alt-deg", 10, "minimum altitude above the horizon counted as a pass, degrees")
	flag.Parse()

	if *line1 == "" || *line2 == "" {
		fmt.Println("usage: groundtrack -line1 '<TLE line 1>' -line2 '<TLE line 2>' [-site-lat-deg LAT -site-lon-deg LON]")
		return
	}

	sat := groundtrack.NewSat(*name, *line1, *line2)
	fmt.Printf("Satellite: %s\n\n", sat.Name)

	t0 := time.Now().UTC()

	if !math.IsNaN(*siteLat) && !math.IsNaN(*siteLon) {
		printPasses(sat, *siteLat, *siteLon, *minAlt, t0, time.Duration(*minutes)*time.Minute)
		return
	}

	fmt.Printf("%-20s %10s %10s\n", "Time (UTC)", "Lat (deg)", "Lon (deg)")
	fmt.Println("-------------------- ---------- ----------")

	for m := 0; m <= *minutes; m += *step {
		t := t0.Add(time.Duration(m) * time.Minute)
		lat, lon := groundtrack.SubPoint(sat.Sat, t)
		if lon > 180 {
			lon -= 360
		}
		fmt.Printf("%s %9.2f %9.2f\n", t.Format("2006-01-02 15:04:05"), lat, lon)
	}
}

func printPasses(sat groundtrack.Sat, latDeg, lonDeg, minAltDeg float64, t0 time.Time, span time.Duration) {
	startJD := timescale.UTCToTT(timescale.TimeToJDUTC(t0))
	endJD := timescale.UTCToTT(timescale.TimeToJDUTC(t0.Add(span)))

	events, err := groundtrack.FindPasses(sat, latDeg, lonDeg, startJD, endJD, minAltDeg)
	if err != nil {
		fmt.Printf("finding passes: %v\n", err)
		return
	}
	if len(events) == 0 {
		fmt.Printf("no passes above %.1f deg over the next %v\n", minAltDeg, span)
		return
	}

	fmt.Printf("%-20s %-12s %10s\n", "Time (UTC)", "Event", "Alt (deg)")
	fmt.Println("-------------------- ------------ ----------")
	for _, e := range events {
		fmt.Printf("%-20s %-12s %10.2f\n", e.Time().Format("2006-01-02 15:04:05"), e.KindString(), e.AltDeg)
	}
}
