// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Package launcher starts the local game client.
package launcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/samber/oops"
)

// Error codes returned by Launch.
const (
	CodeUnsupportedPlatform = "LAUNCH_UNSUPPORTED_PLATFORM"
	CodeLaunchFailed        = "LAUNCH_FAILED"
)

// Default install locations and executables.
const (
	DefaultWindowsInstallDir = `C:\Program Files (x86)\Toontown Rewritten`
	DefaultLinuxInstallDir   = "."

	WindowsExecutable64 = "TTREngine64.exe"
	WindowsExecutable32 = "TTREngine.exe"
	LinuxExecutable     = "TTREngine"
)

// Config selects where the game is installed and which binary to run.
// Empty fields fall back to the platform defaults.
type Config struct {
	InstallDir string
	Executable string
	// Detach returns as soon as the game has started instead of waiting for it to exit.
	Detach bool
}

// Launcher starts the game client as a child process.
type Launcher struct {
	cfg    Config
	logger *slog.Logger
	arch   string
	// output receives the child's stdout and stderr. The game blocks if
	// nothing drains them, so the default is io.Discard rather than nil.
	output io.Writer
}

// New creates a Launcher.
func New(cfg Config, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{
		cfg:    cfg,
		logger: logger,
		arch:   runtime.GOARCH,
		output: io.Discard,
	}
}

// Resolve returns the working directory and absolute executable path for platform.
func (l *Launcher) Resolve(platform Platform) (dir, executable string, err error) {
	switch platform {
	case PlatformWindows:
		dir = DefaultWindowsInstallDir
		executable = WindowsExecutable32
		if is64Bit(l.arch) {
			executable = WindowsExecutable64
		}
	case PlatformLinux:
		dir = DefaultLinuxInstallDir
		executable = LinuxExecutable
	default:
		return "", "", oops.Code(CodeUnsupportedPlatform).
			With("platform", platform).
			Errorf("platform %s is not supported", platform)
	}

	if l.cfg.InstallDir != "" {
		dir = l.cfg.InstallDir
	}
	if l.cfg.Executable != "" {
		executable = l.cfg.Executable
	}

	if platform == PlatformLinux {
		// Relative install dirs are anchored at the current directory.
		abs, absErr := filepath.Abs(dir)
		if absErr != nil {
			return "", "", oops.Code(CodeLaunchFailed).With("install_dir", dir).Wrap(absErr)
		}
		dir = abs
	}
	return dir, filepath.Join(dir, executable), nil
}

// Launch starts the game for platform. env entries (KEY=value) are added to
// the child's environment on top of the current process environment; the
// current process environment itself is left untouched.
func (l *Launcher) Launch(ctx context.Context, platform Platform, env []string) error {
	dir, executable, err := l.Resolve(platform)
	if err != nil {
		return err
	}

	info, err := os.Stat(executable)
	if err != nil {
		return oops.Code(CodeLaunchFailed).
			With("executable", executable).
			Wrapf(err, "game executable not found")
	}

	if platform == PlatformLinux && info.Mode().Perm()&0o100 == 0 {
		if err := os.Chmod(executable, info.Mode().Perm()|0o755); err != nil {
			return oops.Code(CodeLaunchFailed).
				With("executable", executable).
				Wrapf(err, "unable to mark game executable as executable")
		}
		l.logger.Info("marked game executable as executable", "executable", executable)
	}

	// The game outlives a cancelled login context, so ctx is not bound to the child.
	//nolint:gosec // executable comes from operator configuration
	cmd := exec.Command(executable)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = l.output
	cmd.Stderr = l.output

	if err := cmd.Start(); err != nil {
		return oops.Code(CodeLaunchFailed).
			With("executable", executable).
			Wrapf(err, "start game")
	}
	l.logger.InfoContext(ctx, "game started", "pid", cmd.Process.Pid, "executable", executable)

	if l.cfg.Detach {
		//nolint:errcheck // detached child is reaped by the OS on exit
		go cmd.Wait()
		return nil
	}

	// Only a failed start is a launch failure; the exit status is just logged.
	if err := cmd.Wait(); err != nil {
		l.logger.WarnContext(ctx, "game exited",
			"status", cmd.ProcessState.ExitCode(),
			"error", err,
		)
		return nil
	}
	l.logger.InfoContext(ctx, "game exited", "status", 0)
	return nil
}
