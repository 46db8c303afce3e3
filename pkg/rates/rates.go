// Package rates models interest rate events and resolves the rate in force
// at a point in time.
package rates

import (
	"sort"
	"time"
)

// Kind classifies a rate event.
type Kind string

const (
	KindFixed    Kind = "FIXED"
	KindFloating Kind = "FLOATING"
	KindTeaser   Kind = "TEASER"
)

// Event establishes the annual interest rate in effect from its effective
// date forward, until superseded by a later event. For a given loan no two
// events share an effective date.
type Event struct {
	EffectiveDate     time.Time
	AnnualRatePercent float64 // e.g. 5.5 for 5.5%
	Kind              Kind
	BaseRate          string  // optional reference-rate label
	MarginPercent     float64 // optional margin over the base rate
	Reason            string  // optional free-text reason
}

// Sorted returns a copy of events ordered by effective date ascending. The
// input slice is left untouched.
func Sorted(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
	})
	return sorted
}

// ApplicableRate returns the most recent event whose effective date is not
// after date, or nil when date precedes every event. Events need not be
// pre-sorted.
func ApplicableRate(events []Event, date time.Time) *Event {
	var applicable *Event
	for _, event := range Sorted(events) {
		if event.EffectiveDate.After(date) {
			break
		}
		match := event
		applicable = &match
	}
	return applicable
}
