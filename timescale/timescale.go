// Package timescale converts between the time scales used in orbital
// mechanics and Earth-orientation work: UTC (civil time, carries leap
// seconds), TT (Terrestrial Time, the uniform scale ephemerides are
// tabulated in), UT1 (Earth's actual rotation angle), and TDB (the
// relativistic scale used by planetary ephemerides).
package timescale

import (
	"math"
	"time"
)

// SecPerDay is the number of SI seconds in a day.
const SecPerDay = 86400.0

const j2000JD = 2451545.0

// leapSecondEntry pairs a UTC Julian date (at which a new leap second count
// takes effect) with the cumulative TAI-UTC offset in seconds.
type leapSecondEntry struct {
	jdUTC float64
	leap  float64
}

// leapSeconds is the IERS Bulletin C record of TAI-UTC offsets since the
// 1972 adoption of the leap-second system. Each entry's jdUTC is the UTC
// Julian date of 0h on the day the new offset takes effect.
var leapSeconds = []leapSecondEntry{
	{2441317.5, 10}, // 1972-01-01
	{2441499.5, 11}, // 1972-07-01
	{2441683.5, 12}, // 1973-01-01
	{2442048.5, 13}, // 1974-01-01
	{2442413.5, 14}, // 1975-01-01
	{2442778.5, 15}, // 1976-01-01
	{2443144.5, 16}, // 1977-01-01
	{2443509.5, 17}, // 1978-01-01
	{2443874.5, 18}, // 1979-01-01
	{2444239.5, 19}, // 1980-01-01
	{2444786.5, 20}, // 1981-07-01
	{2445151.5, 21}, // 1982-07-01
	{2445516.5, 22}, // 1983-07-01
	{2446247.5, 23}, // 1985-07-01
	{2447161.5, 24}, // 1988-01-01
	{2447892.5, 25}, // 1990-01-01
	{2448257.5, 26}, // 1991-01-01
	{2448804.5, 27}, // 1992-07-01
	{2449169.5, 28}, // 1993-07-01
	{2449534.5, 29}, // 1994-07-01
	{2450083.5, 30}, // 1996-01-01
	{2450630.5, 31}, // 1997-07-01
	{2451179.5, 32}, // 1999-01-01
	{2453736.5, 33}, // 2006-01-01
	{2454832.5, 34}, // 2009-01-01
	{2456109.5, 35}, // 2012-07-01
	{2457204.5, 36}, // 2015-07-01
	{2457754.5, 37}, // 2017-01-01
}

// LeapSecondOffset returns the TAI-UTC offset in seconds effective at the
// given UTC Julian date. Dates before the first tabulated entry return the
// initial offset; dates after the last return the latest known offset (no
// leap second has been announced since).
func LeapSecondOffset(jdUTC float64) float64 {
	if jdUTC < leapSeconds[0].jdUTC {
		return leapSeconds[0].leap
	}
	offset := leapSeconds[0].leap
	for _, e := range leapSeconds {
		if jdUTC < e.jdUTC {
			break
		}
		offset = e.leap
	}
	return offset
}

// deltaTEntry pairs a decimal year with the ΔT = TT - UT1 value in seconds.
type deltaTEntry struct {
	year float64
	dt   float64
}

// deltaTTable tabulates ΔT at 10-year intervals. Values before ~1955 are
// derived from historical observations of the Moon's position; later values
// are measured directly, and entries beyond the current date are long-term
// projections rising from about 4 s per decade near 2030 to about 10 s per
// decade near 2200.
var deltaTTable = []deltaTEntry{
	{1800, 18.3670},
	{1810, 16.9000},
	{1820, 15.7000},
	{1830, 14.6000},
	{1840, 13.8000},
	{1850, 13.2000},
	{1860, 12.9000},
	{1870, 12.7000},
	{1880, 12.0000},
	{1890, 10.0000},
	{1900, 9.0000},
	{1910, 10.3000},
	{1920, 13.0000},
	{1930, 16.0000},
	{1940, 20.0000},
	{1950, 24.3000},
	{1960, 29.1000},
	{1970, 40.2000},
	{1980, 50.5000},
	{1990, 57.0000},
	{2000, 63.8290},
	{2010, 66.0700},
	{2020, 69.3600},
	{2030, 73.0000},
	{2040, 77.0000},
	{2050, 82.0000},
	{2060, 87.0000},
	{2070, 92.0000},
	{2080, 98.0000},
	{2090, 104.0000},
	{2100, 110.0000},
	{2110, 117.0000},
	{2120, 124.0000},
	{2130, 131.0000},
	{2140, 139.0000},
	{2150, 147.0000},
	{2160, 155.0000},
	{2170, 164.0000},
	{2180, 173.0000},
	{2190, 182.0000},
	{2200, 192.0000},
}

// DeltaT returns ΔT = TT - UT1 in seconds for a given decimal year, by
// linear interpolation within the tabulated range. Years outside the table
// clamp to the nearest endpoint.
func DeltaT(year float64) float64 {
	n := len(deltaTTable)
	if year <= deltaTTable[0].year {
		return deltaTTable[0].dt
	}
	if year >= deltaTTable[n-1].year {
		return deltaTTable[n-1].dt
	}

	idx := 0
	for i := 0; i < n-1; i++ {
		if year >= deltaTTable[i].year && year <= deltaTTable[i+1].year {
			idx = i
			break
		}
	}
	if idx >= n-1 {
		idx = n - 2
	}

	lo, hi := deltaTTable[idx], deltaTTable[idx+1]
	frac := (year - lo.year) / (hi.year - lo.year)
	return lo.dt + frac*(hi.dt-lo.dt)
}

// TimeToJDUTC converts a time.Time (interpreted as UTC) to a UTC Julian date.
func TimeToJDUTC(t time.Time) float64 {
	u := t.UTC()
	secs := float64(u.Unix()) + float64(u.Nanosecond())/1e9
	return secs/SecPerDay + 2440587.5
}

// JDUTCToTime converts a UTC Julian date back to a time.Time in UTC.
func JDUTCToTime(jd float64) time.Time {
	secs := (jd - 2440587.5) * SecPerDay
	whole := math.Floor(secs)
	nsec := (secs - whole) * 1e9
	return time.Unix(int64(whole), int64(nsec)).UTC()
}

// UTCToTT converts a UTC Julian date to TT: TT = UTC + (leap seconds + 32.184s).
func UTCToTT(jdUTC float64) float64 {
	offset := LeapSecondOffset(jdUTC) + 32.184
	return jdUTC + offset/SecPerDay
}

// TTToUT1 converts a TT Julian date to UT1 using the tabulated ΔT = TT - UT1.
func TTToUT1(jdTT float64) float64 {
	year := 2000.0 + (jdTT-j2000JD)/365.25
	dt := DeltaT(year)
	return jdTT - dt/SecPerDay
}

// TDBMinusTT returns TDB - TT in seconds at the given TT Julian date, using
// the simplified single-term periodic approximation (max amplitude ~1.7ms,
// USNO Circular 179 eq. 2.6). Sufficient for anything short of pulsar timing.
func TDBMinusTT(jdTT float64) float64 {
	g := (357.53 + 0.9856003*(jdTT-j2000JD)) * math.Pi / 180.0
	return 0.001658*math.Sin(g) + 0.000014*math.Sin(2*g)
}
