// Package xdg locates toonlaunch's files using the XDG Base Directory layout.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName    = "toonlaunch"
	configName = "config.yaml"
)

// ConfigDir returns the toonlaunch config directory: $XDG_CONFIG_HOME/toonlaunch,
// or ~/.config/toonlaunch when the variable is unset or not absolute.
func ConfigDir() string {
	return baseDir("XDG_CONFIG_HOME", ".config")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), configName)
}

// baseDir resolves one XDG base directory. XDG only allows absolute paths, so
// relative values are ignored.
func baseDir(env string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" || !filepath.IsAbs(base) {
		base = filepath.Join(append([]string{os.Getenv("HOME")}, fallback...)...)
	}
	return filepath.Join(base, appName)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.With("path", path).Wrapf(err, "create directory")
	}
	return nil
}

// WriteFile replaces path with data. The parent directory is created if
// needed and the content is renamed into place, so readers never see a
// partially written file.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return oops.With("path", path).Wrapf(err, "create temp file")
	}
	//nolint:errcheck // gone after a successful rename
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		//nolint:errcheck // already failing
		tmp.Close()
		return oops.With("path", path).Wrapf(err, "write temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		//nolint:errcheck // already failing
		tmp.Close()
		return oops.With("path", path).Wrapf(err, "set file mode")
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", path).Wrapf(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return oops.With("path", path).Wrapf(err, "replace file")
	}
	return nil
}
