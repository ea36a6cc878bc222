// Package agenttest provides a scripted agent.Agent for tests.
package agenttest

import (
	"context"
	"sync"

	"github.com/dshills/scribe/internal/agent"
)

// Agent answers from its fields. Every method fails with ctx.Err() when
// called with a done context. The function fields, when set, replace the
// scripted answers.
type Agent struct {
	URL    *agent.AuthorizationURL
	URLErr error

	PollErr error
	// StatusAfterPoll becomes the status after a successful poll.
	StatusAfterPoll agent.Status

	Message    string
	MessageErr error

	OnRequest  func(ctx context.Context) (*agent.AuthorizationURL, error)
	OnPoll     func(ctx context.Context, code string) error
	OnGenerate func(ctx context.Context, chunks []string) (string, error)

	mu       sync.Mutex
	status   agent.Status
	requests int
	polls    []string
	messages [][]string
}

var _ agent.Agent = (*Agent)(nil)

// SetStatus sets the reported status.
func (a *Agent) SetStatus(s agent.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// Status implements agent.Agent. The zero value reports StatusUnknown.
func (a *Agent) Status() agent.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == "" {
		return agent.StatusUnknown
	}
	return a.status
}

// RequestAuthorizationURL implements agent.Agent.
func (a *Agent) RequestAuthorizationURL(ctx context.Context) (*agent.AuthorizationURL, error) {
	a.mu.Lock()
	a.requests++
	a.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.OnRequest != nil {
		return a.OnRequest(ctx)
	}
	return a.URL, a.URLErr
}

// PollAuthorizationToken implements agent.Agent.
func (a *Agent) PollAuthorizationToken(ctx context.Context, code string) error {
	a.mu.Lock()
	a.polls = append(a.polls, code)
	a.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	err := a.PollErr
	if a.OnPoll != nil {
		err = a.OnPoll(ctx, code)
	}
	if err == nil {
		status := a.StatusAfterPoll
		if status == "" {
			status = agent.StatusReady
		}
		a.SetStatus(status)
	}
	return err
}

// GenerateCommitMessage implements agent.Agent.
func (a *Agent) GenerateCommitMessage(ctx context.Context, chunks []string) (string, error) {
	a.mu.Lock()
	a.messages = append(a.messages, append([]string(nil), chunks...))
	a.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a.OnGenerate != nil {
		return a.OnGenerate(ctx, chunks)
	}
	return a.Message, a.MessageErr
}

// Requests returns the number of RequestAuthorizationURL calls.
func (a *Agent) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests
}

// Polls returns the codes passed to PollAuthorizationToken.
func (a *Agent) Polls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.polls...)
}

// Generated returns the chunk lists passed to GenerateCommitMessage.
func (a *Agent) Generated() [][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]string(nil), a.messages...)
}
