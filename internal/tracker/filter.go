// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package tracker

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// CodeBadPattern marks a cog filter pattern that does not compile.
const CodeBadPattern = "TRACKER_BAD_PATTERN"

// Filter selects cog types by glob pattern, ignoring case.
// An empty Filter matches every cog.
type Filter struct {
	patterns []string
	globs    []glob.Glob
}

// NewFilter compiles patterns such as "Big*" or "Robber Baron".
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, oops.Code(CodeBadPattern).With("pattern", pattern).Wrap(err)
		}
		f.patterns = append(f.patterns, pattern)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether cogType passes the filter.
func (f *Filter) Match(cogType string) bool {
	if f == nil || len(f.globs) == 0 {
		return true
	}
	name := strings.ToLower(cogType)
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns the compiled patterns as given.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}
