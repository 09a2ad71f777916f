// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGitHub(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func setVersion(t *testing.T, v string) {
	t.Helper()
	old := version
	version = v
	t.Cleanup(func() { version = old })
}

func TestVersion(t *testing.T) {
	setVersion(t, "1.0.0")

	out, err := execute(t, Deps{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "toonlaunch 1.0.0")
}

func TestVersion_Check(t *testing.T) {
	api := fakeGitHub(t, `[{"tag_name": "v1.4.0", "html_url": "https://example.test/v1.4.0"}]`)

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"outdated", "1.2.0", "A newer version is available: 1.4.0"},
		{"current", "v1.4.0", "You are running the latest version."},
		{"dev build", "dev", "Development build; skipping update check."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVersion(t, tt.version)
			out, err := execute(t, Deps{UpdateAPIURL: api}, "version", "--check")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestVersion_CheckFails(t *testing.T) {
	setVersion(t, "1.0.0")
	api := fakeGitHub(t, `[]`)

	_, err := execute(t, Deps{UpdateAPIURL: api}, "version", "--check")
	require.Error(t, err)
}
