// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package login

import (
	"strconv"

	"github.com/samber/oops"
)

// Status is the value of the "success" discriminant.
type Status string

// Wire values of the "success" field.
const (
	StatusTrue    Status = "true"
	StatusFalse   Status = "false"
	StatusPartial Status = "partial"
	StatusDelayed Status = "delayed"
)

// Placeholders substituted for a missing cookie or gameserver on success.
const (
	CookieNotFound = "CookieNotFound"
	ServerNotFound = "ServerNotFound"
)

// Banners used when the server omits one.
const (
	DefaultChallengeBanner = "Please enter an authenticator token"
	DefaultFailureBanner   = "Login failed, but the server did not say why. Try again later."
)

// Response is one parsed answer from the login endpoint. It is one of
// Accepted, Queued, Challenged or Rejected.
type Response interface {
	Status() Status
}

// Accepted is a successful login.
type Accepted struct {
	Cookie     string
	GameServer string
	// Missing lists fields that were absent and replaced by placeholders.
	Missing []string
}

// Queued means the account is waiting in the login queue.
type Queued struct {
	QueueToken string
	ETA        string
	Position   string
}

// Challenged is a two-factor challenge.
type Challenged struct {
	ResponseToken string
	Banner        string
}

// Rejected is a failed login.
type Rejected struct {
	Banner string
}

func (Accepted) Status() Status   { return StatusTrue }
func (Queued) Status() Status     { return StatusDelayed }
func (Challenged) Status() Status { return StatusPartial }
func (Rejected) Status() Status   { return StatusFalse }

// ParseResponse converts a decoded JSON object into a Response.
//
// A missing queueToken or responseToken is a CodeProtocol error naming the
// field. A missing or unrecognized "success" value is a Rejected response.
func ParseResponse(fields map[string]any) (Response, error) {
	status, _ := stringField(fields, "success")

	switch Status(status) {
	case StatusTrue:
		accepted := Accepted{}
		var ok bool
		if accepted.Cookie, ok = stringField(fields, "cookie"); !ok {
			accepted.Cookie = CookieNotFound
			accepted.Missing = append(accepted.Missing, "cookie")
		}
		if accepted.GameServer, ok = stringField(fields, "gameserver"); !ok {
			accepted.GameServer = ServerNotFound
			accepted.Missing = append(accepted.Missing, "gameserver")
		}
		return accepted, nil

	case StatusDelayed:
		token, ok := stringField(fields, fieldQueueToken)
		if !ok {
			return nil, oops.Code(CodeProtocol).
				With("field", fieldQueueToken).
				Errorf("protocol violation: queue response missing token")
		}
		eta, _ := stringField(fields, "eta")
		position, _ := stringField(fields, "position")
		return Queued{QueueToken: token, ETA: eta, Position: position}, nil

	case StatusPartial:
		token, ok := stringField(fields, "responseToken")
		if !ok {
			return nil, oops.Code(CodeProtocol).
				With("field", "responseToken").
				Errorf("two-factor challenge missing token")
		}
		return Challenged{ResponseToken: token, Banner: banner(fields, DefaultChallengeBanner)}, nil

	default:
		return Rejected{Banner: banner(fields, DefaultFailureBanner)}, nil
	}
}

func banner(fields map[string]any, fallback string) string {
	if b, ok := stringField(fields, "banner"); ok && b != "" {
		return b
	}
	return fallback
}

// stringField reads key as a string. JSON numbers and booleans are rendered
// in their literal form; null, objects and arrays count as absent.
func stringField(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	default:
		return "", false
	}
}
