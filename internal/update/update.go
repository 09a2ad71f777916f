// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Package update checks GitHub for a newer toonlaunch release.
package update

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// Defaults for the release lookup.
const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRepo   = "toonlaunch/toonlaunch"
)

// Error codes.
const (
	CodeRequestFailed  = "UPDATE_REQUEST_FAILED"
	CodeNoReleases     = "UPDATE_NO_RELEASES"
	CodeInvalidVersion = "UPDATE_INVALID_VERSION"
)

// Release is the subset of a GitHub release the checker reads.
type Release struct {
	Tag        string `json:"tag_name"`
	Name       string `json:"name"`
	URL        string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Result compares the running version with the newest release.
type Result struct {
	Current         *semver.Version
	Latest          *semver.Version
	Release         Release
	UpdateAvailable bool
}

// Checker looks up releases.
type Checker struct {
	apiURL     string
	repo       string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Checker.
type Option func(*Checker)

// WithAPIURL points the checker at another GitHub API root.
func WithAPIURL(u string) Option {
	return func(c *Checker) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithRepo sets the "owner/name" repository to check.
func WithRepo(repo string) Option {
	return func(c *Checker) { c.repo = repo }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Checker) { c.userAgent = ua }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		apiURL:     DefaultAPIURL,
		repo:       DefaultRepo,
		userAgent:  "toonlaunch",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest returns the newest published release. Drafts, pre-releases and
// tags that are not semantic versions are skipped.
func (c *Checker) Latest(ctx context.Context) (*Release, *semver.Version, error) {
	u := c.apiURL + "/repos/" + c.repo + "/releases"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, oops.Code(CodeRequestFailed).With("url", u).Wrap(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, oops.Code(CodeRequestFailed).With("url", u).Wrap(err)
	}
	defer func() {
		//nolint:errcheck // read-only body
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, oops.Code(CodeRequestFailed).
			With("url", u).
			With("status", resp.StatusCode).
			Errorf("unexpected HTTP status %s", resp.Status)
	}

	var releases []Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&releases); err != nil {
		return nil, nil, oops.Code(CodeRequestFailed).With("url", u).Wrapf(err, "decode releases")
	}

	var (
		best    *Release
		bestVer *semver.Version
	)
	for i := range releases {
		r := releases[i]
		if r.Draft || r.Prerelease {
			continue
		}
		v, err := semver.NewVersion(r.Tag)
		if err != nil {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = &r, v
		}
	}
	if best == nil {
		return nil, nil, oops.Code(CodeNoReleases).With("repo", c.repo).Errorf("no published releases found")
	}
	return best, bestVer, nil
}

// Check compares current against the newest release.
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return nil, oops.Code(CodeInvalidVersion).
			With("version", current).
			Wrapf(err, "running version is not a release version")
	}

	release, latest, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		Current:         cur,
		Latest:          latest,
		Release:         *release,
		UpdateAvailable: latest.GreaterThan(cur),
	}, nil
}
