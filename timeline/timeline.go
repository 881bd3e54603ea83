// Package timeline implements the coded-event algebra access planning is
// built on: raw start/stop events from a detector are paired into
// phenomena (intervals over which some condition held), and phenomena from
// independent detectors are combined, filtered, and thresholded to decide
// when a target is actually observable.
package timeline

import (
	"fmt"
	"time"

	"github.com/agileobs/planner/timewindow"
)

// CodedEvent is a single instant at which a detector's switching function
// crossed zero: Code identifies which detector produced it, IsStart
// distinguishes the rising edge (condition becoming true) from the falling
// edge.
type CodedEvent struct {
	At      time.Time
	Code    string
	IsStart bool
}

// Phenomenon is a maximal interval over which a coded condition held true.
type Phenomenon struct {
	Code  string
	Start time.Time
	End   time.Time
}

// Span returns the phenomenon's duration.
func (p Phenomenon) Span() time.Duration {
	return p.End.Sub(p.Start)
}

func (p Phenomenon) String() string {
	return fmt.Sprintf("%s[%s,%s]", p.Code, p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
}

// Timeline is an ordered collection of phenomena bounded to a validity
// horizon. Phenomena of the same code never overlap; phenomena of
// different codes may.
type Timeline struct {
	Validity  timewindow.Horizon
	phenomena []Phenomenon
}

// New creates an empty Timeline over the given validity horizon.
func New(validity timewindow.Horizon) Timeline {
	return Timeline{Validity: validity}
}

// Phenomena returns the timeline's phenomena in chronological order.
func (t Timeline) Phenomena() []Phenomenon {
	out := make([]Phenomenon, len(t.phenomena))
	copy(out, t.phenomena)
	return out
}

// AddPhenomenon inserts p into the timeline, keeping phenomena sorted by
// start time. p is clipped to the timeline's validity horizon; it is
// dropped silently if it falls entirely outside it.
func (t *Timeline) AddPhenomenon(p Phenomenon) {
	if p.Start.Before(t.Validity.Start) {
		p.Start = t.Validity.Start
	}
	if p.End.After(t.Validity.End) {
		p.End = t.Validity.End
	}
	if !p.End.After(p.Start) {
		return
	}

	idx := 0
	for idx < len(t.phenomena) && t.phenomena[idx].Start.Before(p.Start) {
		idx++
	}
	t.phenomena = append(t.phenomena, Phenomenon{})
	copy(t.phenomena[idx+1:], t.phenomena[idx:])
	t.phenomena[idx] = p
}

// FromEvents pairs a chronological sequence of same-code CodedEvents into
// phenomena: each IsStart event opens an interval that the next non-start
// event of the same code closes. An interval still open at the end of the
// events is closed at validity.End; an interval implicitly open at
// validity.Start (the first event for that code is a stop, not a start) is
// opened at validity.Start.
func FromEvents(validity timewindow.Horizon, events []CodedEvent) Timeline {
	t := New(validity)

	open := make(map[string]time.Time)
	for _, e := range events {
		if e.IsStart {
			open[e.Code] = e.At
			continue
		}
		start, ok := open[e.Code]
		if !ok {
			start = validity.Start
		}
		t.AddPhenomenon(Phenomenon{Code: e.Code, Start: start, End: e.At})
		delete(open, e.Code)
	}
	for code, start := range open {
		t.AddPhenomenon(Phenomenon{Code: code, Start: start, End: validity.End})
	}
	return t
}

// FilterByCode returns the subset of phenomena matching code.
func (t Timeline) FilterByCode(code string) Timeline {
	out := New(t.Validity)
	for _, p := range t.phenomena {
		if p.Code == code {
			out.AddPhenomenon(p)
		}
	}
	return out
}

// FilterByMinDuration drops phenomena whose duration does not exceed min:
// a phenomenon lasting exactly min is dropped, matching the strict
// "duration > integration time" access-window invariant.
func (t Timeline) FilterByMinDuration(min time.Duration) Timeline {
	out := New(t.Validity)
	for _, p := range t.phenomena {
		if p.Span() > min {
			out.AddPhenomenon(p)
		}
	}
	return out
}

// ApplyAnd intersects every phenomenon in t against every phenomenon in
// other, keeping only the non-empty overlaps. The resulting phenomenon's
// code combines both inputs' codes, e.g. "VISIBLE&SUNLIT". Phenomena that
// share no overlap with anything in other contribute nothing to the
// result — this is a logical AND, not a union.
func (t Timeline) ApplyAnd(other Timeline) Timeline {
	validity := t.Validity
	if v, ok := t.Validity.Intersect(other.Validity); ok {
		validity = v
	}
	out := New(validity)

	for _, a := range t.phenomena {
		for _, b := range other.phenomena {
			start := a.Start
			if b.Start.After(start) {
				start = b.Start
			}
			end := a.End
			if b.End.Before(end) {
				end = b.End
			}
			if end.After(start) {
				out.AddPhenomenon(Phenomenon{
					Code:  a.Code + "&" + b.Code,
					Start: start,
					End:   end,
				})
			}
		}
	}
	return out
}
