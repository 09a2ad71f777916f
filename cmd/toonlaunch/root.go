package main

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/toonlaunch/toonlaunch/internal/config"
	"github.com/toonlaunch/toonlaunch/internal/logging"
	"github.com/toonlaunch/toonlaunch/internal/ttrapi"
)

// annotationConfigOptional marks commands that run even when an explicit
// --config file does not exist yet.
const annotationConfigOptional = "toonlaunch/config-optional"

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	deps       Deps
	configFile string
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

// NewRootCmd creates the root command for the toonlaunch CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(Deps{})
}

func newRootCmd(deps Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults()}
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "toonlaunch",
		Short: "toonlaunch - a Toontown Rewritten launcher",
		Long: `toonlaunch logs in to Toontown Rewritten, waits out the login queue,
answers two-factor challenges and starts the game client. It also reports
cog invasions, district population and field offices.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/toonlaunch/config.yaml)")
	cmd.PersistentFlags().String("log-format", def.LogFormat, "log format (json or text)")
	cmd.PersistentFlags().String("log-level", def.LogLevel, "log level (debug, info, warn, error)")

	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newTrackCmd(a))
	cmd.AddCommand(newNotesCmd(a))
	cmd.AddCommand(newVersionCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// load resolves configuration for the command being run. An explicit
// --config must exist unless the command is annotated otherwise; the default
// location is always optional.
func (a *app) load(cmd *cobra.Command) error {
	path, required := a.configFile, true
	if path == "" {
		path, required = a.deps.DefaultConfigPath(), false
	}
	if cmd.Annotations[annotationConfigOptional] == "true" {
		required = false
	}

	cfg, err := config.Load(path, required, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.configPath = path
	a.logger = logging.Setup("toonlaunch", version, cfg.LogFormat, level, a.deps.LogOutput)
	a.logger.Debug("configuration loaded", "path", path, "required", required)
	return nil
}

// apiClient builds a game API client. A non-nil transport replaces the
// shared HTTP client's transport.
func (a *app) apiClient(transport http.RoundTripper) *ttrapi.Client {
	hc := a.deps.HTTPClient
	if transport != nil {
		clone := *hc
		clone.Transport = transport
		hc = &clone
	}
	return ttrapi.NewClient(
		ttrapi.WithBaseURL(a.cfg.APIBaseURL),
		ttrapi.WithLoginURL(a.cfg.LoginURL),
		ttrapi.WithUserAgent(a.cfg.UserAgent),
		ttrapi.WithHTTPClient(hc),
	)
}
