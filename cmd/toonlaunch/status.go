package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/toonlaunch/toonlaunch/internal/config"
	"github.com/toonlaunch/toonlaunch/internal/tracker"
	"github.com/toonlaunch/toonlaunch/internal/ttrapi"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

// statusReport is the --json form of a snapshot.
type statusReport struct {
	FetchedAt    time.Time           `json:"fetched_at"`
	Population   int                 `json:"population"`
	Districts    []districtStatus    `json:"districts"`
	Invasions    []invasionStatus    `json:"invasions"`
	FieldOffices []fieldOfficeStatus `json:"field_offices"`
}

type districtStatus struct {
	Name       string `json:"name"`
	Population int    `json:"population"`
}

type invasionStatus struct {
	District string `json:"district"`
	Cog      string `json:"cog"`
	Defeated int    `json:"defeated"`
	Total    int    `json:"total"`
	Mega     bool   `json:"mega"`
}

type fieldOfficeStatus struct {
	Street  string `json:"street"`
	Stars   int    `json:"stars"`
	Annexes int    `json:"annexes"`
	Open    bool   `json:"open"`
}

func newStatusCmd(a *app) *cobra.Command {
	var jsonOutput bool
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current invasions, population and field offices",
		Long: `Fetch one snapshot of the public game status: active cog invasions,
toons online per district and sellbot field offices. Use --cog to limit the
invasions shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().String("api-base-url", def.APIBaseURL, "game API base URL")
	cmd.Flags().StringSlice("cog", nil, "only show invasions of matching cog types (glob, repeatable)")
	cmd.Flags().Uint64("retries", def.Tracker.Retries, "retries per endpoint on transient errors")

	return cmd
}

func (a *app) runStatus(cmd *cobra.Command, jsonOutput bool) error {
	tr, err := tracker.New(a.apiClient(nil), a.trackerConfig(), tracker.WithLogger(a.logger))
	if err != nil {
		return err
	}

	snap, err := tr.Fetch(cmd.Context())
	if err != nil {
		errutil.LogError(a.logger, "status fetch failed", err)
		return err
	}
	snap.Invasions = tr.Matching(snap.Invasions)

	if jsonOutput {
		out, err := formatStatusJSON(snap)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	}
	return writeStatusTable(cmd.OutOrStdout(), snap)
}

func (a *app) trackerConfig() tracker.Config {
	return tracker.Config{
		Interval: a.cfg.Tracker.Interval,
		Retries:  a.cfg.Tracker.Retries,
		Cogs:     a.cfg.Tracker.Cogs,
	}
}

func writeStatusTable(out io.Writer, snap *tracker.Snapshot) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if snap.Population != nil {
		_, _ = fmt.Fprintf(w, "Population\t%d toons\n", snap.Population.Total)
		for _, d := range snap.Population.Districts {
			_, _ = fmt.Fprintf(w, "  %s\t%d\n", d.Name, d.Population)
		}
	}

	_, _ = fmt.Fprintf(w, "\nInvasions\t%d\n", len(snap.Invasions))
	for _, inv := range snap.Invasions {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", inv.District, inv.CogType, inv.Progress())
	}

	open := 0
	for _, fo := range snap.FieldOffices {
		if fo.Open {
			open++
		}
	}
	_, _ = fmt.Fprintf(w, "\nField offices\t%d open\n", open)
	for _, fo := range snap.FieldOffices {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%d annexes\t%s\n",
			fo.Street, strings.Repeat("*", fo.Stars), fo.Annexes, openLabel(fo))
	}

	return w.Flush()
}

func openLabel(fo ttrapi.FieldOffice) string {
	if fo.Open {
		return "open"
	}
	return "closed"
}

func formatStatusJSON(snap *tracker.Snapshot) (string, error) {
	report := statusReport{
		FetchedAt:    snap.FetchedAt,
		Districts:    []districtStatus{},
		Invasions:    []invasionStatus{},
		FieldOffices: []fieldOfficeStatus{},
	}
	if snap.Population != nil {
		report.Population = snap.Population.Total
		for _, d := range snap.Population.Districts {
			report.Districts = append(report.Districts, districtStatus{Name: d.Name, Population: d.Population})
		}
	}
	for _, inv := range snap.Invasions {
		report.Invasions = append(report.Invasions, invasionStatus{
			District: inv.District,
			Cog:      inv.CogType,
			Defeated: inv.Defeated,
			Total:    inv.Total,
			Mega:     inv.Mega,
		})
	}
	for _, fo := range snap.FieldOffices {
		report.FieldOffices = append(report.FieldOffices, fieldOfficeStatus{
			Street:  fo.Street,
			Stars:   fo.Stars,
			Annexes: fo.Annexes,
			Open:    fo.Open,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal status: %w", err)
	}
	return string(data), nil
}
