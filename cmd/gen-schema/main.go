// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Command gen-schema writes the config file JSON Schema. With --check it
// instead fails when the committed schema is out of date.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/toonlaunch/toonlaunch/internal/config"
)

func main() {
	outPath := pflag.String("out", filepath.Join("schemas", "config.schema.json"), "schema file to write")
	check := pflag.Bool("check", false, "verify the schema file is current instead of writing it")
	pflag.Parse()

	if err := run(*outPath, *check); err != nil {
		fmt.Fprintf(os.Stderr, "gen-schema: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string, check bool) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	schema = append(schema, '\n')

	if check {
		current, err := os.ReadFile(outPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", outPath, err)
		}
		if !bytes.Equal(current, schema) {
			return fmt.Errorf("%s is stale; run go run ./cmd/gen-schema", outPath)
		}
		fmt.Printf("%s is up to date\n", outPath)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	fmt.Printf("Generated %s\n", outPath)
	return nil
}
