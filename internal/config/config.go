// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Package config loads launcher settings from defaults, a YAML file and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/toonlaunch/toonlaunch/internal/ttrapi"
)

// CodeInvalid marks configuration errors.
const CodeInvalid = "CONFIG_INVALID"

// Account is a saved login. Password may be empty, in which case it is
// asked for at login time.
type Account struct {
	Username string `koanf:"username" json:"username" yaml:"username"`
	Password string `koanf:"password" json:"password,omitempty" yaml:"password,omitempty"`
}

// Tracker configures the invasion/population tracker.
type Tracker struct {
	Interval    time.Duration `koanf:"interval" json:"interval,omitempty" yaml:"interval,omitempty"`
	Retries     uint64        `koanf:"retries" json:"retries,omitempty" yaml:"retries,omitempty"`
	Cogs        []string      `koanf:"cogs" json:"cogs,omitempty" yaml:"cogs,omitempty"`
	MetricsAddr string        `koanf:"metrics-addr" json:"metrics-addr,omitempty" yaml:"metrics-addr,omitempty"`
}

// Config is the full launcher configuration.
type Config struct {
	LogFormat  string        `koanf:"log-format" json:"log-format,omitempty" yaml:"log-format,omitempty"`
	LogLevel   string        `koanf:"log-level" json:"log-level,omitempty" yaml:"log-level,omitempty"`
	LoginURL   string        `koanf:"login-url" json:"login-url,omitempty" yaml:"login-url,omitempty"`
	APIBaseURL string        `koanf:"api-base-url" json:"api-base-url,omitempty" yaml:"api-base-url,omitempty"`
	UserAgent  string        `koanf:"user-agent" json:"user-agent,omitempty" yaml:"user-agent,omitempty"`
	QueueDelay time.Duration `koanf:"queue-delay" json:"queue-delay,omitempty" yaml:"queue-delay,omitempty"`
	InstallDir string        `koanf:"install-dir" json:"install-dir,omitempty" yaml:"install-dir,omitempty"`
	Executable string        `koanf:"executable" json:"executable,omitempty" yaml:"executable,omitempty"`
	Detach     bool          `koanf:"detach" json:"detach,omitempty" yaml:"detach,omitempty"`

	Tracker  Tracker            `koanf:"tracker" json:"tracker,omitempty" yaml:"tracker,omitempty"`
	Accounts map[string]Account `koanf:"accounts" json:"accounts,omitempty" yaml:"accounts,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogFormat:  "text",
		LogLevel:   "info",
		LoginURL:   ttrapi.DefaultLoginURL,
		APIBaseURL: ttrapi.DefaultBaseURL,
		UserAgent:  ttrapi.DefaultUserAgent,
		QueueDelay: time.Second,
		Tracker: Tracker{
			Interval: 10 * time.Second,
			Retries:  3,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code(CodeInvalid).With("log-format", c.LogFormat).
			Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.LoginURL == "" {
		return oops.Code(CodeInvalid).Errorf("login-url is required")
	}
	if c.QueueDelay < 0 {
		return oops.Code(CodeInvalid).With("queue-delay", c.QueueDelay).Errorf("queue-delay must not be negative")
	}
	if c.Tracker.Interval <= 0 {
		return oops.Code(CodeInvalid).With("tracker.interval", c.Tracker.Interval).
			Errorf("tracker.interval must be positive")
	}
	for name, acct := range c.Accounts {
		if acct.Username == "" {
			return oops.Code(CodeInvalid).With("account", name).Errorf("account %q has no username", name)
		}
	}
	return nil
}

// Account looks up a saved account by name.
func (c *Config) Account(name string) (Account, error) {
	acct, ok := c.Accounts[name]
	if !ok {
		return Account{}, oops.Code(CodeInvalid).
			With("account", name).
			With("known", c.AccountNames()).
			Errorf("no account named %q in config", name)
	}
	return acct, nil
}

// AccountNames returns the saved account names, sorted.
func (c *Config) AccountNames() []string {
	names := make([]string, 0, len(c.Accounts))
	for name := range c.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FlagKeys maps command-line flag names onto config keys. Flags absent from
// the map are not configuration.
var FlagKeys = map[string]string{
	"log-format":   "log-format",
	"log-level":    "log-level",
	"login-url":    "login-url",
	"api-base-url": "api-base-url",
	"user-agent":   "user-agent",
	"queue-delay":  "queue-delay",
	"install-dir":  "install-dir",
	"executable":   "executable",
	"detach":       "detach",
	"interval":     "tracker.interval",
	"retries":      "tracker.retries",
	"cog":          "tracker.cogs",
	"metrics-addr": "tracker.metrics-addr",
}

// Load builds the configuration. path may be empty or name a missing file
// when required is false; explicitly requested files must exist. Flags that
// were set on the command line override the file.
func Load(path string, required bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := ValidateSchema(data); err != nil {
				return nil, oops.Code(CodeInvalid).With("path", path).Wrap(err)
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code(CodeInvalid).With("path", path).Wrapf(err, "parse config file")
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
			// Running without a config file is normal.
		default:
			return nil, oops.Code(CodeInvalid).With("path", path).Wrapf(err, "read config file")
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeInvalid).Wrapf(err, "apply flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code(CodeInvalid).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
