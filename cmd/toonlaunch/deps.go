package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/toonlaunch/toonlaunch/internal/launcher"
	"github.com/toonlaunch/toonlaunch/internal/login"
	"github.com/toonlaunch/toonlaunch/internal/observability"
	"github.com/toonlaunch/toonlaunch/internal/prompt"
	"github.com/toonlaunch/toonlaunch/internal/update"
	"github.com/toonlaunch/toonlaunch/internal/xdg"
)

// Deps contains injectable dependencies for the CLI.
// All fields with zero values use their default implementations.
type Deps struct {
	// HTTPClient is used for every call to the game and GitHub APIs.
	// Default: an http.Client with a 30 second timeout.
	HTTPClient *http.Client

	// LauncherFactory creates the game launcher.
	// Default: launcher.New
	LauncherFactory func(cfg launcher.Config, logger *slog.Logger) login.Launcher

	// SecretReader reads a password without echo.
	// Default: prompt.ReadSecret
	SecretReader func(label string) (string, error)

	// ObservabilityServerFactory creates the metrics server for track.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// Stdin supplies two-factor answers.
	// Default: os.Stdin
	Stdin io.Reader

	// LogOutput receives structured logs.
	// Default: os.Stderr
	LogOutput io.Writer

	// DefaultConfigPath returns the config file used when --config is not given.
	// Default: xdg.ConfigFile
	DefaultConfigPath func() string

	// UpdateAPIURL is the GitHub API root for version --check.
	// Default: update.DefaultAPIURL
	UpdateAPIURL string

	// Platform overrides host platform detection for the login flow.
	// Default: launcher.HostPlatform()
	Platform launcher.Platform

	// Sleeper replaces the login queue timer.
	// Default: the flow's own timer
	Sleeper login.Sleeper
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
	Registry() *prometheus.Registry
}

func (d Deps) withDefaults() Deps {
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if d.LauncherFactory == nil {
		d.LauncherFactory = func(cfg launcher.Config, logger *slog.Logger) login.Launcher {
			return launcher.New(cfg, logger)
		}
	}
	if d.SecretReader == nil {
		d.SecretReader = prompt.ReadSecret
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, ready, logger)
		}
	}
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	if d.LogOutput == nil {
		d.LogOutput = os.Stderr
	}
	if d.DefaultConfigPath == nil {
		d.DefaultConfigPath = xdg.ConfigFile
	}
	if d.UpdateAPIURL == "" {
		d.UpdateAPIURL = update.DefaultAPIURL
	}
	if d.Platform == "" {
		d.Platform = launcher.HostPlatform()
	}
	return d
}
