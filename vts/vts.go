// Package vts writes plain, bounded-width text tables describing a
// mission's orbit, attitude, and site data — shaped like the header-plus-rows
// layout of CCSDS OEM/AEM/MEM visualization products, without attempting a
// byte-exact rendition of those formats.
package vts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agileobs/planner/attitude"
	"github.com/agileobs/planner/cinematic"
	"github.com/agileobs/planner/orbit"
	"github.com/agileobs/planner/site"
)

func create(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vts: creating directory %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("vts: creating %s: %w", name, err)
	}
	return f, nil
}

// WritePOI writes a point-of-interest table: one row per ground site.
func WritePOI(sites []*site.Site, dir string) error {
	f, err := create(dir, "sites.poi")
	if err != nil {
		return err
	}
	defer f.Close()
	return writePOI(f, sites)
}

func writePOI(w io.Writer, sites []*site.Site) error {
	fmt.Fprintf(w, "# POI name score lat_deg lon_deg alt_m\n")
	fmt.Fprintf(w, "%-24s %8s %12s %12s %10s\n", "NAME", "SCORE", "LAT_DEG", "LON_DEG", "ALT_M")
	for _, s := range sites {
		fmt.Fprintf(w, "%-24s %8.2f %12.6f %12.6f %10.1f\n", s.Name, s.Score, s.LatDeg, s.LonDeg, s.AltitudeM)
	}
	return nil
}

// WriteOEM writes an orbit ephemeris table: one row per propagated sample.
func WriteOEM(eph orbit.Ephemeris, dir string) error {
	f, err := create(dir, "orbit.oem")
	if err != nil {
		return err
	}
	defer f.Close()
	return writeOEM(f, eph)
}

func writeOEM(w io.Writer, eph orbit.Ephemeris) error {
	fmt.Fprintf(w, "# OEM position/velocity, ICRF, km and km/s\n")
	fmt.Fprintf(w, "%-24s %14s %14s %14s %12s %12s %12s\n",
		"EPOCH", "X_KM", "Y_KM", "Z_KM", "VX_KMS", "VY_KMS", "VZ_KMS")
	for _, s := range eph.Samples {
		fmt.Fprintf(w, "%-24s %14.4f %14.4f %14.4f %12.6f %12.6f %12.6f\n",
			s.At.Format("2006-01-02T15:04:05.000"),
			s.PositionKm[0], s.PositionKm[1], s.PositionKm[2],
			s.VelocityKm[0], s.VelocityKm[1], s.VelocityKm[2])
	}
	return nil
}

// WriteAEM writes an attitude ephemeris table: one row per sample time in
// eph, with the orientation law evaluated at that instant.
func WriteAEM(eph orbit.Ephemeris, law attitude.Law, dir string) error {
	f, err := create(dir, "attitude.aem")
	if err != nil {
		return err
	}
	defer f.Close()
	return writeAEM(f, eph, law)
}

func writeAEM(w io.Writer, eph orbit.Ephemeris, law attitude.Law) error {
	fmt.Fprintf(w, "# AEM quaternion, scalar-first\n")
	fmt.Fprintf(w, "%-24s %10s %10s %10s %10s\n", "EPOCH", "QW", "QX", "QY", "QZ")
	for _, s := range eph.Samples {
		st, err := law.AttitudeAt(s.At)
		if err != nil {
			return fmt.Errorf("vts: evaluating attitude law at %s: %w", s.At, err)
		}
		fmt.Fprintf(w, "%-24s %10.6f %10.6f %10.6f %10.6f\n",
			s.At.Format("2006-01-02T15:04:05.000"),
			st.Orientation.W, st.Orientation.X, st.Orientation.Y, st.Orientation.Z)
	}
	return nil
}

// WriteMEM writes a mission-ephemeris table: one row per cinematic plan
// leg, naming its kind, law, and boundary times.
func WriteMEM(plan cinematic.Plan, dir string) error {
	f, err := create(dir, "plan.mem")
	if err != nil {
		return err
	}
	defer f.Close()
	return writeMEM(f, plan)
}

func writeMEM(w io.Writer, plan cinematic.Plan) error {
	fmt.Fprintf(w, "# MEM cinematic plan\n")
	fmt.Fprintf(w, "%-32s %-12s %-24s %-24s %12s\n", "LEG", "KIND", "START", "END", "DURATION_S")
	for _, leg := range plan {
		fmt.Fprintf(w, "%-32s %-12s %-24s %-24s %12.3f\n",
			leg.Name, leg.Kind.String(),
			leg.Start.Format("2006-01-02T15:04:05.000"),
			leg.End.Format("2006-01-02T15:04:05.000"),
			leg.End.Sub(leg.Start).Seconds())
	}
	return nil
}
