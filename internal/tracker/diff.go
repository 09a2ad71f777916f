// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package tracker

import (
	"sort"

	"github.com/toonlaunch/toonlaunch/internal/ttrapi"
)

// EventKind says whether an invasion appeared or went away.
type EventKind string

// Invasion event kinds.
const (
	EventStarted EventKind = "started"
	EventEnded   EventKind = "ended"
)

// Event is a change in the set of active invasions.
type Event struct {
	Kind     EventKind
	Invasion ttrapi.Invasion
}

// Diff compares two invasion lists keyed by district. A district whose cog
// type changed between polls yields an ended event followed by a started one.
// Events are ordered by district; ended before started within a district.
func Diff(prev, next []ttrapi.Invasion) []Event {
	before := make(map[string]ttrapi.Invasion, len(prev))
	for _, inv := range prev {
		before[inv.District] = inv
	}
	after := make(map[string]ttrapi.Invasion, len(next))
	for _, inv := range next {
		after[inv.District] = inv
	}

	districts := make([]string, 0, len(before)+len(after))
	for d := range before {
		districts = append(districts, d)
	}
	for d := range after {
		if _, ok := before[d]; !ok {
			districts = append(districts, d)
		}
	}
	sort.Strings(districts)

	var events []Event
	for _, d := range districts {
		old, had := before[d]
		cur, has := after[d]
		switch {
		case had && has && old.CogType == cur.CogType:
		case had && has:
			events = append(events, Event{Kind: EventEnded, Invasion: old}, Event{Kind: EventStarted, Invasion: cur})
		case had:
			events = append(events, Event{Kind: EventEnded, Invasion: old})
		default:
			events = append(events, Event{Kind: EventStarted, Invasion: cur})
		}
	}
	return events
}
