// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/toonlaunch/toonlaunch/internal/config"
	"github.com/toonlaunch/toonlaunch/internal/xdg"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
			return err
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationConfigOptional: "true",
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeDefaultConfig(a.configPath, force)
		},
		PostRun: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("Wrote %s\n", a.configPath)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return oops.Code(config.CodeInvalid).With("path", path).
				Errorf("config file already exists (use --force to overwrite)")
		} else if !errors.Is(err, fs.ErrNotExist) {
			return oops.With("path", path).Wrap(err)
		}
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return oops.Wrapf(err, "encode default config")
	}
	if err := config.ValidateSchema(data); err != nil {
		return err
	}

	return xdg.WriteFile(path, data, 0o600)
}
