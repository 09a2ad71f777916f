// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Package ttrapi is a client for the Toontown Rewritten web API: the login
// endpoint and the public game-status endpoints.
package ttrapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Default endpoints.
const (
	DefaultBaseURL  = "https://www.toontownrewritten.com/api"
	DefaultLoginURL = DefaultBaseURL + "/login?format=json"
)

// DefaultUserAgent identifies the launcher to the API, which refuses
// requests without a descriptive agent.
const DefaultUserAgent = "toonlaunch (+https://github.com/toonlaunch/toonlaunch)"

// Error codes returned by the client.
const (
	CodeRequestFailed = "TRANSPORT_REQUEST_FAILED"
	CodeBadStatus     = "TRANSPORT_BAD_STATUS"
	CodeBadBody       = "TRANSPORT_BAD_BODY"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client talks to the TTR API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	loginURL   string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the root of the public endpoints.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLoginURL sets the login endpoint.
func WithLoginURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.loginURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		loginURL:   DefaultLoginURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login posts form to the login endpoint as application/x-www-form-urlencoded
// and returns the decoded JSON object.
func (c *Client) Login(ctx context.Context, form url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, oops.Code(CodeRequestFailed).With("url", c.loginURL).Wrap(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body map[string]any
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, oops.Code(CodeBadBody).With("url", c.loginURL).Errorf("login response is not a JSON object")
	}
	return body, nil
}

// getJSON fetches path below the base URL into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return oops.Code(CodeRequestFailed).With("url", u).Wrap(err)
	}
	return c.do(req, v)
}

func (c *Client) do(req *http.Request, v any) error {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	u := req.URL.Redacted()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.Code(CodeRequestFailed).With("url", u).Wrap(err)
	}
	defer func() {
		//nolint:errcheck // body already consumed
		resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return oops.Code(CodeRequestFailed).With("url", u).Wrapf(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return oops.Code(CodeBadStatus).
			With("url", u).
			With("status", resp.StatusCode).
			Errorf("unexpected HTTP status %s", resp.Status)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return oops.Code(CodeBadBody).With("url", u).Wrapf(err, "decode JSON response")
	}
	return nil
}
