// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package login

import "errors"

// Error codes attached to errors returned by this package.
const (
	// CodeTransport marks network, HTTP status and JSON decode failures.
	CodeTransport = "LOGIN_TRANSPORT_FAILED"
	// CodeProtocol marks well-formed responses that lack a required field.
	CodeProtocol = "LOGIN_PROTOCOL_VIOLATION"
	// CodeRejected marks a server-reported failure.
	CodeRejected = "LOGIN_REJECTED"
	// CodePrompt marks a two-factor answer that could not be read.
	CodePrompt = "LOGIN_PROMPT_FAILED"
	// CodeInterrupted marks a queue wait cut short by cancellation.
	CodeInterrupted = "LOGIN_INTERRUPTED"
	// CodeInvalidCredentials marks empty usernames or passwords.
	CodeInvalidCredentials = "LOGIN_INVALID_CREDENTIALS"
)

// detached carries a client error under a login error. errors.Is still
// reaches the cause, but its oops code and context stay hidden so the login
// code is the one reported.
type detached struct {
	err error
}

func (d detached) Error() string { return d.err.Error() }

func (d detached) Is(target error) bool { return errors.Is(d.err, target) }
