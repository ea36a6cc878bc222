// Package auth drives the interactive sign-in handshake with the agent.
//
// A [Controller] runs one handshake per call to [Controller.Run]:
//
//	Idle → Requesting → AwaitingUserAction → PollingToken → Succeeded
//
// with AlreadyAuthorized, Failed and Cancelled as the other terminal states.
// Each run owns its own session, so concurrent runs on one controller never
// interfere. Cancellation is an outcome, not a failure, and is never
// reported to the user as an error.
package auth
