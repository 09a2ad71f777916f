// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/toonlaunch/toonlaunch/internal/config"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

// releaseNotesURL is where a note's slug can be read in full.
const releaseNotesURL = "https://www.toontownrewritten.com/news/notes/"

func newNotesCmd(a *app) *cobra.Command {
	var limit int
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List recent game release notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			notes, err := a.apiClient(nil).ReleaseNotes(cmd.Context())
			if err != nil {
				errutil.LogError(a.logger, "release notes fetch failed", err)
				return err
			}
			if limit > 0 && len(notes) > limit {
				notes = notes[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, n := range notes {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s%d\n", n.Date, n.Slug, releaseNotesURL, n.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of notes to show (0 = all)")
	cmd.Flags().String("api-base-url", def.APIBaseURL, "game API base URL")

	return cmd
}
