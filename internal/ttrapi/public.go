// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package ttrapi

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
)

// megaInvasionSize is the cog total the API reports for mega invasions.
const megaInvasionSize = 1_000_000

// Invasion is an active cog invasion in one district.
type Invasion struct {
	District  string
	CogType   string
	Defeated  int
	Total     int
	Mega      bool
	UpdatedAt time.Time
}

// Progress renders "defeated/total", or "Mega Invasion".
func (i Invasion) Progress() string {
	if i.Mega {
		return "Mega Invasion"
	}
	return strconv.Itoa(i.Defeated) + "/" + strconv.Itoa(i.Total)
}

type invasionsPayload struct {
	Error     *string `json:"error"`
	Invasions map[string]struct {
		AsOf     int64  `json:"asOf"`
		Type     string `json:"type"`
		Progress string `json:"progress"`
	} `json:"invasions"`
	LastUpdated int64 `json:"lastUpdated"`
}

// Invasions returns the active invasions sorted by district.
func (c *Client) Invasions(ctx context.Context) ([]Invasion, error) {
	var payload invasionsPayload
	if err := c.getJSON(ctx, "/invasions", &payload); err != nil {
		return nil, err
	}
	if payload.Error != nil && *payload.Error != "" {
		return nil, oops.Code(CodeBadBody).With("endpoint", "invasions").Errorf("api error: %s", *payload.Error)
	}

	invasions := make([]Invasion, 0, len(payload.Invasions))
	for district, raw := range payload.Invasions {
		defeated, total, err := parseProgress(raw.Progress)
		if err != nil {
			return nil, oops.Code(CodeBadBody).
				With("district", district).
				With("progress", raw.Progress).
				Wrap(err)
		}
		invasions = append(invasions, Invasion{
			District: district,
			// Some cog names carry a stray control character from the game's text markup.
			CogType:   strings.ReplaceAll(raw.Type, "\u0003", ""),
			Defeated:  defeated,
			Total:     total,
			Mega:      total >= megaInvasionSize,
			UpdatedAt: time.Unix(raw.AsOf, 0),
		})
	}
	sort.Slice(invasions, func(i, j int) bool { return invasions[i].District < invasions[j].District })
	return invasions, nil
}

func parseProgress(s string) (defeated, total int, err error) {
	left, right, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, oops.Errorf("progress %q is not of the form a/b", s)
	}
	if defeated, err = strconv.Atoi(strings.TrimSpace(left)); err != nil {
		return 0, 0, oops.Wrapf(err, "progress %q", s)
	}
	if total, err = strconv.Atoi(strings.TrimSpace(right)); err != nil {
		return 0, 0, oops.Wrapf(err, "progress %q", s)
	}
	return defeated, total, nil
}

// District is a game district and its toon count.
type District struct {
	Name       string
	Population int
	Status     string
}

// Population is a snapshot of toons online.
type Population struct {
	Total     int
	Districts []District
	UpdatedAt time.Time
}

type populationPayload struct {
	LastUpdated          int64             `json:"lastUpdated"`
	TotalPopulation      int               `json:"totalPopulation"`
	PopulationByDistrict map[string]int    `json:"populationByDistrict"`
	StatusByDistrict     map[string]string `json:"statusByDistrict"`
}

// Population returns the current population, districts sorted by name.
func (c *Client) Population(ctx context.Context) (*Population, error) {
	var payload populationPayload
	if err := c.getJSON(ctx, "/population", &payload); err != nil {
		return nil, err
	}

	pop := &Population{
		Total:     payload.TotalPopulation,
		UpdatedAt: time.Unix(payload.LastUpdated, 0),
	}
	for name, count := range payload.PopulationByDistrict {
		pop.Districts = append(pop.Districts, District{
			Name:       name,
			Population: count,
			Status:     payload.StatusByDistrict[name],
		})
	}
	sort.Slice(pop.Districts, func(i, j int) bool { return pop.Districts[i].Name < pop.Districts[j].Name })
	return pop, nil
}

// streets maps field office zone ids to street names.
var streets = map[int]string{
	3100: "Walrus Way",
	3200: "Sleet Street",
	3300: "Polar Place",
	4100: "Alto Avenue",
	4200: "Baritone Boulevard",
	4300: "Tenor Terrace",
	5100: "Elm Street",
	5200: "Maple Street",
	5300: "Oak Street",
	9100: "Lullaby Lane",
	9200: "Pajama Place",
}

// FieldOffice is an active sellbot field office.
type FieldOffice struct {
	Zone    int
	Street  string
	Stars   int
	Annexes int
	Open    bool
}

type fieldOfficesPayload struct {
	LastUpdated  int64 `json:"lastUpdated"`
	FieldOffices map[string]struct {
		Department string `json:"department"`
		Difficulty int    `json:"difficulty"`
		Annexes    int    `json:"annexes"`
		Open       bool   `json:"open"`
	} `json:"fieldOffices"`
}

// FieldOffices returns the active field offices sorted by zone.
func (c *Client) FieldOffices(ctx context.Context) ([]FieldOffice, error) {
	var payload fieldOfficesPayload
	if err := c.getJSON(ctx, "/fieldoffices", &payload); err != nil {
		return nil, err
	}

	offices := make([]FieldOffice, 0, len(payload.FieldOffices))
	for key, raw := range payload.FieldOffices {
		zone, err := strconv.Atoi(key)
		if err != nil {
			return nil, oops.Code(CodeBadBody).With("zone", key).Wrapf(err, "field office zone")
		}
		street, ok := streets[zone]
		if !ok {
			street = "Zone " + key
		}
		offices = append(offices, FieldOffice{
			Zone:   zone,
			Street: street,
			// difficulty is zero-indexed on the wire.
			Stars:   raw.Difficulty + 1,
			Annexes: raw.Annexes,
			Open:    raw.Open,
		})
	}
	sort.Slice(offices, func(i, j int) bool { return offices[i].Zone < offices[j].Zone })
	return offices, nil
}

// ReleaseNote is one entry of the game's release notes index.
type ReleaseNote struct {
	ID    int    `json:"noteId"`
	Slug  string `json:"slug"`
	Date  string `json:"date"`
	Title string `json:"title,omitempty"`
}

// ReleaseNotes returns the release notes index, newest first as served.
func (c *Client) ReleaseNotes(ctx context.Context) ([]ReleaseNote, error) {
	var notes []ReleaseNote
	if err := c.getJSON(ctx, "/releasenotes", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}
