// Package site loads ground-target definitions: geodetic positions paired
// with a scheduling score, read from a simple CSV target list.
package site

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Site is a ground target: a fixed geodetic point carrying a priority score
// the scheduler uses to decide which target wins a scheduling conflict.
type Site struct {
	Name      string
	Score     float64
	LatDeg    float64
	LonDeg    float64
	AltitudeM float64
}

// LoadCSV reads a target list from path. The file must have a header row
// followed by rows of name,score,lat_deg,lon_deg,alt_m.
func LoadCSV(path string) ([]*Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("site: opening %s: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]*Site, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("site: reading header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var sites []*Site
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("site: reading record at line %d: %w", line+1, err)
		}
		line++

		s, err := parseRecord(record)
		if err != nil {
			return nil, errors.WithMessage(err, fmt.Sprintf("site: line %d", line))
		}
		sites = append(sites, s)
	}
	return sites, nil
}

var wantHeader = []string{"name", "score", "lat_deg", "lon_deg", "alt_m"}

func validateHeader(header []string) error {
	if len(header) != len(wantHeader) {
		return fmt.Errorf("site: expected %d columns %v, got %v", len(wantHeader), wantHeader, header)
	}
	for i, col := range header {
		if strings.ToLower(strings.TrimSpace(col)) != wantHeader[i] {
			return fmt.Errorf("site: expected header %v, got %v", wantHeader, header)
		}
	}
	return nil
}

func parseRecord(record []string) (*Site, error) {
	if len(record) != 5 {
		return nil, fmt.Errorf("expected 5 fields, got %d", len(record))
	}

	score, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid score %q: %w", record[1], err)
	}
	lat, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat_deg %q: %w", record[2], err)
	}
	lon, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lon_deg %q: %w", record[3], err)
	}
	alt, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid alt_m %q: %w", record[4], err)
	}
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("lat_deg %f out of range [-90,90]", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("lon_deg %f out of range [-180,180]", lon)
	}

	return &Site{
		Name:      strings.TrimSpace(record[0]),
		Score:     score,
		LatDeg:    lat,
		LonDeg:    lon,
		AltitudeM: alt,
	}, nil
}
