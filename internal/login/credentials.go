// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package login

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/samber/oops"
)

// Environment variable names read by the game client.
const (
	EnvPlayCookie = "TTR_PLAYCOOKIE"
	EnvGameServer = "TTR_GAMESERVER"
)

// Form field names understood by the login endpoint.
const (
	fieldUsername   = "username"
	fieldPassword   = "password"
	fieldQueueToken = "queueToken"
	fieldAppToken   = "appToken"
	fieldAuthToken  = "authToken"
)

// Credentials identify the account being logged in.
type Credentials struct {
	Username string
	Password string
}

// NewCredentials validates and returns a Credentials value.
func NewCredentials(username, password string) (Credentials, error) {
	if username == "" {
		return Credentials{}, oops.Code(CodeInvalidCredentials).Errorf("username is required")
	}
	if password == "" {
		return Credentials{}, oops.Code(CodeInvalidCredentials).Errorf("password is required")
	}
	return Credentials{Username: username, Password: password}, nil
}

// Form encodes the initial login request body.
func (c Credentials) Form() url.Values {
	return url.Values{
		fieldUsername: {c.Username},
		fieldPassword: {c.Password},
	}
}

// String keeps the password out of logs and error messages.
func (c Credentials) String() string {
	return "Credentials{Username: " + c.Username + "}"
}

// GoString keeps the password out of %#v output.
func (c Credentials) GoString() string {
	return fmt.Sprintf("login.Credentials{Username:%q, Password:%q}", c.Username, redactedPassword)
}

// LogValue keeps the password out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", redactedPassword),
	)
}

const redactedPassword = "[REDACTED]"

// queueForm builds the queue re-check request. It carries the token and nothing else.
func queueForm(queueToken string) url.Values {
	return url.Values{fieldQueueToken: {queueToken}}
}

// challengeForm builds the two-factor answer request.
func challengeForm(appToken, responseToken string) url.Values {
	return url.Values{
		fieldAppToken:  {appToken},
		fieldAuthToken: {responseToken},
	}
}

// SessionEnvironment is what a successful login hands to the game client.
type SessionEnvironment struct {
	PlayCookie string
	GameServer string
}

// Pairs returns the environment as KEY=value entries.
func (e SessionEnvironment) Pairs() []string {
	return []string{
		EnvPlayCookie + "=" + e.PlayCookie,
		EnvGameServer + "=" + e.GameServer,
	}
}
