// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

// Package login drives the Toontown Rewritten login protocol to a terminal
// outcome.
//
// # Protocol
//
// Every exchange is one form POST answered by a JSON object whose "success"
// field selects the next step:
//   - "true" - the account is authenticated; cookie and gameserver are handed
//     to the game client through TTR_PLAYCOOKIE and TTR_GAMESERVER.
//   - "delayed" - the account is queued; the queueToken is posted back after
//     a fixed delay until the queue resolves.
//   - "partial" - a two-factor challenge; the operator's code is posted back
//     as appToken together with the server's responseToken as authToken.
//   - "false" (or anything unrecognized) - the login failed; banner explains.
//
// # Flow
//
// Flow.Run walks the states Start, AwaitingResponse, Queued,
// AwaitingTwoFactor, Success and Failed as an explicit loop, so long queue
// waits never grow the stack. Exactly one request is outstanding at a time.
package login
