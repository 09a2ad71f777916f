// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Package tracker polls the public game status endpoints, reports invasions
// as they start and end, and exports the latest snapshot as metrics.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/toonlaunch/toonlaunch/internal/ttrapi"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

// DefaultRetryDelay is the pause between attempts of a failed fetch.
const DefaultRetryDelay = 500 * time.Millisecond

// Source is the subset of the public API the tracker reads.
type Source interface {
	Invasions(ctx context.Context) ([]ttrapi.Invasion, error)
	Population(ctx context.Context) (*ttrapi.Population, error)
	FieldOffices(ctx context.Context) ([]ttrapi.FieldOffice, error)
}

// Snapshot is one poll of every endpoint.
type Snapshot struct {
	Invasions    []ttrapi.Invasion
	Population   *ttrapi.Population
	FieldOffices []ttrapi.FieldOffice
	FetchedAt    time.Time
}

// Config controls polling.
type Config struct {
	Interval   time.Duration
	Retries    uint64
	RetryDelay time.Duration
	Cogs       []string
}

// Tracker polls a Source. Poll and Run must not be called concurrently.
type Tracker struct {
	src      Source
	cfg      Config
	filter   *Filter
	metrics  *Metrics
	logger   *slog.Logger
	onEvent  func(Event)
	now      func() time.Time
	previous []ttrapi.Invasion
	primed   bool
	ready    atomic.Bool
	mu       sync.Mutex
	latest   *Snapshot
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics records every snapshot into m.
func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithEventHandler is called for every invasion event that passes the cog filter.
func WithEventHandler(fn func(Event)) Option {
	return func(t *Tracker) { t.onEvent = fn }
}

// New creates a Tracker.
func New(src Source, cfg Config, opts ...Option) (*Tracker, error) {
	if src == nil {
		return nil, oops.Errorf("tracker source is required")
	}
	if cfg.Interval <= 0 {
		return nil, oops.With("interval", cfg.Interval).Errorf("tracker interval must be positive")
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	filter, err := NewFilter(cfg.Cogs)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		src:    src,
		cfg:    cfg,
		filter: filter,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Ready reports whether at least one poll has succeeded.
func (t *Tracker) Ready() bool {
	return t.ready.Load()
}

// Latest returns the most recent successful snapshot, or nil.
func (t *Tracker) Latest() *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Matching returns the invasions whose cog type passes the tracker's filter.
func (t *Tracker) Matching(invasions []ttrapi.Invasion) []ttrapi.Invasion {
	out := make([]ttrapi.Invasion, 0, len(invasions))
	for _, inv := range invasions {
		if t.filter.Match(inv.CogType) {
			out = append(out, inv)
		}
	}
	return out
}

// Fetch reads every endpoint once, retrying transient failures.
func (t *Tracker) Fetch(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{}

	if err := t.fetch(ctx, "invasions", func(ctx context.Context) (err error) {
		s.Invasions, err = t.src.Invasions(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := t.fetch(ctx, "population", func(ctx context.Context) (err error) {
		s.Population, err = t.src.Population(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := t.fetch(ctx, "fieldoffices", func(ctx context.Context) (err error) {
		s.FieldOffices, err = t.src.FieldOffices(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	s.FetchedAt = t.now()
	return s, nil
}

// Poll fetches a snapshot, records it and reports invasion changes since the
// previous poll. The first poll reports nothing; it only establishes a baseline.
func (t *Tracker) Poll(ctx context.Context) ([]Event, error) {
	s, err := t.Fetch(ctx)
	if err != nil {
		t.metrics.poll("error")
		return nil, err
	}
	t.metrics.poll("ok")
	t.metrics.record(s)

	var events []Event
	if t.primed {
		for _, ev := range Diff(t.previous, s.Invasions) {
			if t.filter.Match(ev.Invasion.CogType) {
				events = append(events, ev)
			}
		}
	}
	t.previous = s.Invasions
	t.primed = true

	t.mu.Lock()
	t.latest = s
	t.mu.Unlock()
	t.ready.Store(true)

	for _, ev := range events {
		t.logger.InfoContext(ctx, "invasion "+string(ev.Kind),
			"district", ev.Invasion.District,
			"cog", ev.Invasion.CogType,
			"progress", ev.Invasion.Progress(),
		)
		if t.onEvent != nil {
			t.onEvent(ev)
		}
	}
	return events, nil
}

// Run polls immediately and then every interval until ctx is done. Failed
// polls are logged and do not stop the loop.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.InfoContext(ctx, "tracker started",
		"interval", t.cfg.Interval,
		"cogs", t.filter.Patterns(),
	)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := t.Poll(ctx); err != nil && ctx.Err() == nil {
			errutil.LogError(t.logger, "tracker poll failed", err)
		}

		select {
		case <-ctx.Done():
			t.logger.InfoContext(ctx, "tracker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (t *Tracker) fetch(ctx context.Context, endpoint string, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(t.cfg.Retries, retry.NewConstant(t.cfg.RetryDelay))
	attempt := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if transient(err) {
			t.logger.DebugContext(ctx, "fetch failed",
				"endpoint", endpoint,
				"attempt", attempt,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return oops.With("endpoint", endpoint).With("attempts", attempt).Wrap(err)
	}
	return nil
}

// transient reports whether a fetch error is worth retrying: network
// failures, throttling and server errors.
func transient(err error) bool {
	switch errutil.CodeOf(err) {
	case ttrapi.CodeRequestFailed:
		return true
	case ttrapi.CodeBadStatus:
		oopsErr, ok := oops.AsOops(err)
		if !ok {
			return false
		}
		status, _ := oopsErr.Context()["status"].(int)
		return status == 429 || status >= 500
	default:
		return false
	}
}
