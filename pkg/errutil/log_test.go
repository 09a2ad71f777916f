// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("LOGIN_TRANSPORT_FAILED").
		With("url", "https://example.invalid").
		Errorf("connection refused")

	errutil.LogError(logger, "login failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "login failed", logEntry["msg"])
	assert.Equal(t, "LOGIN_TRANSPORT_FAILED", logEntry["code"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
	assert.NotContains(t, logEntry, "code")
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("x"), want: ""},
		{name: "oops without code", err: oops.Errorf("x"), want: ""},
		{name: "coded", err: oops.Code("LAUNCH_FAILED").Errorf("x"), want: "LAUNCH_FAILED"},
		{name: "wrapped coded", err: fmt.Errorf("outer: %w", oops.Code("LOGIN_REJECTED").Errorf("x")), want: "LOGIN_REJECTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.CodeOf(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := oops.Code("LAUNCH_UNSUPPORTED_PLATFORM").Errorf("plan9")

	assert.True(t, errutil.HasCode(err, "LAUNCH_UNSUPPORTED_PLATFORM"))
	assert.False(t, errutil.HasCode(err, "LAUNCH_FAILED"))
	assert.False(t, errutil.HasCode(nil, "LAUNCH_FAILED"))
}
