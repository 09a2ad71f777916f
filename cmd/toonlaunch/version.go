// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toonlaunch/toonlaunch/internal/update"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

func newVersionCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version, optionally checking for a newer release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "toonlaunch %s (commit: %s, built: %s)\n", version, commit, date)
			if !check {
				return nil
			}

			checker := update.NewChecker(
				update.WithAPIURL(a.deps.UpdateAPIURL),
				update.WithUserAgent(a.cfg.UserAgent),
				update.WithHTTPClient(a.deps.HTTPClient),
			)
			res, err := checker.Check(cmd.Context(), version)
			if err != nil {
				if errutil.HasCode(err, update.CodeInvalidVersion) {
					fmt.Fprintln(out, "Development build; skipping update check.")
					return nil
				}
				errutil.LogError(a.logger, "update check failed", err)
				return err
			}

			if res.UpdateAvailable {
				fmt.Fprintf(out, "A newer version is available: %s\n%s\n", res.Latest, res.Release.URL)
				return nil
			}
			fmt.Fprintln(out, "You are running the latest version.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
