package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/toonlaunch/toonlaunch/internal/config"
	"github.com/toonlaunch/toonlaunch/internal/launcher"
	"github.com/toonlaunch/toonlaunch/internal/login"
	"github.com/toonlaunch/toonlaunch/internal/prompt"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

func newLoginCmd(a *app) *cobra.Command {
	var account string
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and launch the game",
		Long: `Log in to Toontown Rewritten and start the game client.

Credentials are given as two arguments, username first, or taken from an
account saved in the config file with --account. A saved account without a
password asks for one on the terminal.

When the server queues the login, toonlaunch waits and checks again until it
is let in. When the account uses two-factor authentication, the server's
prompt is shown and one line is read from standard input.`,
		Example: `  toonlaunch login flippy hunter2
  toonlaunch login --account main`,
		Args: func(_ *cobra.Command, args []string) error {
			if account != "" {
				if len(args) != 0 {
					return oops.Errorf("--account cannot be combined with a username and password")
				}
				return nil
			}
			if len(args) != 2 {
				return oops.Errorf("login requires <username> and <password> (or --account NAME), got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLogin(cmd, account, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&account, "account", "a", "", "log in with an account saved in the config file")
	f.String("login-url", def.LoginURL, "login API endpoint")
	f.String("user-agent", def.UserAgent, "User-Agent sent to the game API")
	f.Duration("queue-delay", def.QueueDelay, "wait between login queue checks")
	f.String("install-dir", "", "game install directory (default depends on platform)")
	f.String("executable", "", "game executable name (default depends on platform)")
	f.Bool("detach", false, "return once the game has started instead of waiting for it to exit")

	return cmd
}

func (a *app) runLogin(cmd *cobra.Command, account string, args []string) error {
	creds, err := a.credentials(account, args)
	if err != nil {
		return err
	}

	gameLauncher := a.deps.LauncherFactory(launcher.Config{
		InstallDir: a.cfg.InstallDir,
		Executable: a.cfg.Executable,
		Detach:     a.cfg.Detach,
	}, a.logger)

	out := cmd.OutOrStdout()
	flow, err := login.NewFlow(a.apiClient(nil), gameLauncher, prompt.NewLine(a.deps.Stdin, out),
		login.WithLogger(a.logger),
		login.WithOutput(out),
		login.WithQueueDelay(a.cfg.QueueDelay),
		login.WithPlatform(a.deps.Platform),
		login.WithSleeper(a.deps.Sleeper),
	)
	if err != nil {
		return err
	}

	result, err := flow.Run(cmd.Context(), creds)
	switch {
	case err == nil:
		a.logger.Info("login finished", "requests", result.Requests, "path", result.Path)
		return nil
	case errutil.HasCode(err, launcher.CodeUnsupportedPlatform):
		a.logger.Warn("logged in but the game cannot be launched here", "platform", a.deps.Platform)
		return nil
	default:
		errutil.LogError(a.logger, "login failed", err)
		// The flow already printed the reason.
		cmd.SilenceErrors = true
		return err
	}
}

func (a *app) credentials(account string, args []string) (login.Credentials, error) {
	if account == "" {
		return login.NewCredentials(args[0], args[1])
	}

	acct, err := a.cfg.Account(account)
	if err != nil {
		return login.Credentials{}, err
	}
	password := acct.Password
	if password == "" {
		if password, err = a.deps.SecretReader("Password for " + acct.Username); err != nil {
			return login.Credentials{}, err
		}
	}
	return login.NewCredentials(acct.Username, password)
}
