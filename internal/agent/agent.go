package agent

import (
	"context"
	"errors"
	"fmt"
)

// Status is the agent's readiness as last observed.
type Status string

const (
	StatusUnknown         Status = "unknown"
	StatusReady           Status = "ready"
	StatusUnauthenticated Status = "unauthenticated"
	StatusError           Status = "error"
)

// AuthorizationURL is an issued authorization link and the opaque code used
// to exchange it for a token once the user approves in the browser.
type AuthorizationURL struct {
	URL  string `json:"url"`
	Code string `json:"code"`
}

// Agent is the logical contract of the remote agent.
type Agent interface {
	// RequestAuthorizationURL returns nil without error when the agent issued
	// no URL; Status then tells whether it is already authorized.
	RequestAuthorizationURL(ctx context.Context) (*AuthorizationURL, error)
	// PollAuthorizationToken blocks until the exchange for code completes.
	PollAuthorizationToken(ctx context.Context, code string) error
	Status() Status
	// GenerateCommitMessage writes a message for the given per-file diff
	// chunks, which are ordered by priority.
	GenerateCommitMessage(ctx context.Context, chunks []string) (string, error)
}

// Error is a failure reported by the agent.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("agent %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("agent %s: %s", e.Op, e.Message)
}

// IsCancellation reports whether err stems from a cancelled abort signal.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsUnauthenticated reports whether err is an agent rejection of missing or
// invalid credentials.
func IsUnauthenticated(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.StatusCode == 401 || ae.StatusCode == 403
	}
	return false
}
