// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package login

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/toonlaunch/toonlaunch/internal/launcher"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

// DefaultQueueDelay is how long the flow waits before re-checking a queue token.
const DefaultQueueDelay = time.Second

var tracer = otel.Tracer("github.com/toonlaunch/toonlaunch/internal/login")

// Client sends one login form and returns the decoded JSON answer.
type Client interface {
	Login(ctx context.Context, form url.Values) (map[string]any, error)
}

// Launcher starts the game client for a platform with extra environment entries.
type Launcher interface {
	Launch(ctx context.Context, platform launcher.Platform, env []string) error
}

// Prompter asks the operator for a line of text.
type Prompter interface {
	Prompt(ctx context.Context, banner string) (string, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Result describes how a Run ended.
type Result struct {
	State State
	// Message is the line shown to the operator.
	Message string
	// Requests counts the forms sent to the login endpoint.
	Requests int
	// Environment is set only when the login succeeded.
	Environment *SessionEnvironment
	// Path records every state the machine entered, in order.
	Path []State
}

// Flow drives the login protocol. A Flow is not safe for concurrent Runs.
type Flow struct {
	client     Client
	launcher   Launcher
	prompter   Prompter
	logger     *slog.Logger
	out        io.Writer
	sleep      Sleeper
	queueDelay time.Duration
	platform   launcher.Platform
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithOutput sets where operator messages are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(f *Flow) {
		if w != nil {
			f.out = w
		}
	}
}

// WithQueueDelay overrides DefaultQueueDelay.
func WithQueueDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d >= 0 {
			f.queueDelay = d
		}
	}
}

// WithSleeper replaces the timer used for the queue delay.
func WithSleeper(s Sleeper) Option {
	return func(f *Flow) {
		if s != nil {
			f.sleep = s
		}
	}
}

// WithPlatform overrides the host platform passed to the launcher.
func WithPlatform(p launcher.Platform) Option {
	return func(f *Flow) {
		f.platform = p
	}
}

// NewFlow creates a Flow. Returns an error if any collaborator is nil.
func NewFlow(client Client, l Launcher, p Prompter, opts ...Option) (*Flow, error) {
	if client == nil {
		return nil, oops.Errorf("login client is required")
	}
	if l == nil {
		return nil, oops.Errorf("launcher is required")
	}
	if p == nil {
		return nil, oops.Errorf("prompter is required")
	}

	f := &Flow{
		client:     client,
		launcher:   l,
		prompter:   p,
		logger:     slog.New(slog.DiscardHandler),
		out:        os.Stdout,
		sleep:      sleepContext,
		queueDelay: DefaultQueueDelay,
		platform:   launcher.HostPlatform(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// run holds the per-attempt state of a single Run.
type run struct {
	*Flow
	result *Result
	logger *slog.Logger
	queued bool
}

// Run logs in with creds and, on success, launches the game.
//
// The returned Result is never nil. The error is nil only when the login
// succeeded and the game client was started; otherwise it carries one of the
// package's error codes or a launcher code. The operator-facing message has
// already been written to the flow's output when Run returns.
func (f *Flow) Run(ctx context.Context, creds Credentials) (*Result, error) {
	r := &run{
		Flow:   f,
		result: &Result{State: StateStart, Path: []State{StateStart}},
		logger: f.logger.With("attempt_id", ulid.Make().String(), "username", creds.Username),
	}

	form := creds.Form()
	for {
		r.enter(StateAwaitingResponse)

		resp, err := r.exchange(ctx, form)
		if err != nil {
			return r.result, err
		}

		switch v := resp.(type) {
		case Accepted:
			return r.result, r.accept(ctx, v)

		case Queued:
			r.enter(StateQueued)
			if form, err = r.waitInQueue(ctx, v); err != nil {
				return r.result, err
			}

		case Challenged:
			r.enter(StateAwaitingTwoFactor)
			if form, err = r.answerChallenge(ctx, v); err != nil {
				return r.result, err
			}

		case Rejected:
			r.logger.InfoContext(ctx, "login rejected", "banner", v.Banner)
			return r.result, r.fail(v.Banner, oops.Code(CodeRejected).
				With("banner", v.Banner).
				Errorf("login rejected: %s", v.Banner))
		}
	}
}

// exchange sends form and parses the answer.
func (r *run) exchange(ctx context.Context, form url.Values) (Response, error) {
	ctx, span := tracer.Start(ctx, "login.exchange")
	defer span.End()

	r.result.Requests++
	span.SetAttributes(
		attribute.Int("login.request", r.result.Requests),
		attribute.String("login.fields", strings.Join(formKeys(form), ",")),
	)
	r.logger.DebugContext(ctx, "sending login request",
		"request", r.result.Requests,
		"fields", formKeys(form),
	)

	fields, err := r.client.Login(ctx, form)
	if err != nil {
		span.SetStatus(codes.Error, "transport")
		r.logger.ErrorContext(ctx, "login request failed", "error", err)
		return nil, r.fail(
			fmt.Sprintf("Could not talk to the login server: %v", err),
			oops.Code(CodeTransport).
				With("request", r.result.Requests).
				With("cause_code", errutil.CodeOf(err)).
				Wrap(detached{err}),
		)
	}

	resp, err := ParseResponse(fields)
	if err != nil {
		span.SetStatus(codes.Error, "protocol")
		r.logger.ErrorContext(ctx, "invalid login response", "error", err)
		return nil, r.fail("The login server sent an invalid response: "+err.Error(), err)
	}

	span.SetAttributes(attribute.String("login.status", string(resp.Status())))
	r.logger.DebugContext(ctx, "login response", "status", resp.Status())
	return resp, nil
}

// accept hands the session to the game client.
func (r *run) accept(ctx context.Context, a Accepted) error {
	if len(a.Missing) > 0 {
		r.logger.WarnContext(ctx, "login succeeded without expected fields, using placeholders",
			"missing", a.Missing)
	}

	env := SessionEnvironment{PlayCookie: a.Cookie, GameServer: a.GameServer}
	r.result.Environment = &env

	r.logger.InfoContext(ctx, "login successful, launching game",
		"platform", r.platform,
		"gameserver", a.GameServer,
	)
	r.say("Login successful, launching game.")

	if err := r.launcher.Launch(ctx, r.platform, env.Pairs()); err != nil {
		r.logger.ErrorContext(ctx, "game launch failed", "error", err)
		return r.fail(launchMessage(r.platform, err), err)
	}

	r.enter(StateSuccess)
	r.result.Message = "Login successful, launching game."
	return nil
}

// waitInQueue sleeps the fixed delay and returns the queue re-check form.
func (r *run) waitInQueue(ctx context.Context, q Queued) (url.Values, error) {
	r.logger.InfoContext(ctx, "waiting in login queue",
		"position", q.Position,
		"eta", q.ETA,
	)
	if !r.queued {
		r.queued = true
		r.say(queueMessage(q))
	}

	if err := r.sleep(ctx, r.queueDelay); err != nil {
		return nil, r.fail("Stopped waiting in the login queue.",
			oops.Code(CodeInterrupted).With("stage", "queue").Wrap(err))
	}
	return queueForm(q.QueueToken), nil
}

// answerChallenge prompts the operator and returns the two-factor form.
func (r *run) answerChallenge(ctx context.Context, c Challenged) (url.Values, error) {
	r.logger.InfoContext(ctx, "two-factor challenge received")

	answer, err := r.prompter.Prompt(ctx, c.Banner)
	if err != nil {
		return nil, r.fail(
			fmt.Sprintf("Could not read the authenticator token: %v", err),
			oops.Code(CodePrompt).Wrap(err),
		)
	}
	return challengeForm(answer, c.ResponseToken), nil
}

// enter moves the machine to next, recording the step.
func (r *run) enter(next State) {
	current := r.result.State
	if !current.CanTransition(next) {
		r.logger.Warn("unexpected login state transition", "from", current, "to", next)
	}
	r.result.State = next
	r.result.Path = append(r.result.Path, next)
}

// fail ends the run: the message is shown to the operator and err returned.
func (r *run) fail(message string, err error) error {
	r.enter(StateFailed)
	r.result.Message = message
	r.say(message)
	return err
}

func (r *run) say(message string) {
	//nolint:errcheck // operator output is best effort
	fmt.Fprintln(r.out, message)
}

func queueMessage(q Queued) string {
	if q.Position != "" {
		return fmt.Sprintf("You are in the login queue (position %s). Waiting...", q.Position)
	}
	return "You are in the login queue. Waiting..."
}

func launchMessage(platform launcher.Platform, err error) string {
	if errutil.HasCode(err, launcher.CodeUnsupportedPlatform) {
		return fmt.Sprintf("Platform %s isn't supported yet.", platform)
	}
	return fmt.Sprintf("Could not launch the game: %v", err)
}

func formKeys(form url.Values) []string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
