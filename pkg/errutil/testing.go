// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package errutil

import (
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// T is the part of testing.TB the assertions use. GinkgoT() satisfies it too.
type T interface {
	require.TestingT
	Helper()
}

// AssertErrorCode asserts that err is an oops error carrying code.
func AssertErrorCode(t T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	_, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	assert.Equal(t, code, CodeOf(err), "error: %v", err)
}

// AssertErrorContext asserts that err is an oops error whose context holds
// key with the given value.
func AssertErrorContext(t T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	ctx := oopsErr.Context()
	require.Contains(t, ctx, key, "context: %v", ctx)
	assert.Equal(t, value, ctx[key])
}
