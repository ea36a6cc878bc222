package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/scribe/internal/agent"
	"github.com/dshills/scribe/internal/cancel"
	"github.com/dshills/scribe/internal/host"
	"github.com/dshills/scribe/internal/logging"
)

// Progress messages shown during a handshake.
const (
	ProgressTitle      = "Signing in"
	MsgGeneratingURL   = "Generating authorization URL…"
	MsgWaitingBrowser  = "Waiting for authorization from browser…"
	MsgFailed          = "Authorization failed."
	MsgAlreadySignedIn = "Already signed in."
	MsgSignedIn        = "Signed in."
)

// Hooks are called around every handshake. OnStart fires before any agent
// call; OnEnd fires exactly once after a terminal state is reached, on every
// exit path.
type Hooks struct {
	OnStart func(sessionID string)
	OnEnd   func(Result)
}

// Controller runs authorization handshakes against an agent.
type Controller struct {
	agent agent.Agent
	host  host.Host
	hooks Hooks
	log   logrus.FieldLogger
	quiet bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithHooks sets the start and end hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) { c.hooks = h }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = logging.Component(l, "auth") }
}

// WithSuccessNotifications controls whether successful handshakes are
// announced through the host. Failures are always announced.
func WithSuccessNotifications(on bool) Option {
	return func(c *Controller) { c.quiet = !on }
}

// NewController returns a Controller.
func NewController(a agent.Agent, h host.Host, opts ...Option) *Controller {
	c := &Controller{
		agent: a,
		host:  h,
		log:   logging.Component(nil, "auth"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// session is the per-run handshake state. It is never shared between runs.
type session struct {
	id    string
	code  string
	state State
	trace []State
	err   error
	log   logrus.FieldLogger
}

func (s *session) enter(st State) {
	s.state = st
	s.trace = append(s.trace, st)
	s.log.WithField("state", st.String()).Debug("state transition")
}

func (s *session) result() Result {
	return Result{
		SessionID: s.id,
		State:     s.state,
		Trace:     append([]State(nil), s.trace...),
		Err:       s.err,
	}
}

// invariantError marks a broken post-condition. Run panics with it once the
// progress UI has been torn down.
type invariantError struct {
	status agent.Status
}

func (e *invariantError) Error() string {
	return fmt.Sprintf("auth: token exchange succeeded but agent status is %q", e.status)
}

// Run performs one handshake. tok cancels it, as does the host's own
// progress cancellation. Run panics if the agent accepts the token but does
// not report itself ready afterwards.
func (c *Controller) Run(ctx context.Context, tok cancel.Token) Result {
	s := &session{id: uuid.NewString()}
	s.log = c.log.WithField("session", s.id)
	s.enter(StateIdle)

	if c.hooks.OnStart != nil {
		c.hooks.OnStart(s.id)
	}
	defer func() {
		if c.hooks.OnEnd != nil {
			c.hooks.OnEnd(s.result())
		}
	}()

	ctx, release := cancel.Bridge(ctx, tok)
	defer release()

	err := c.host.WithProgress(ctx, ProgressTitle, func(ctx context.Context, p host.Progress, ptok cancel.Token) error {
		ctx, release := cancel.Bridge(ctx, ptok)
		defer release()
		return c.handshake(ctx, s, p)
	})

	var ie *invariantError
	switch {
	case errors.As(err, &ie):
		s.err = ie
		s.enter(StateFailed)
		panic(ie)
	case err == nil:
		if !c.quiet {
			if s.state == StateAlreadyAuthorized {
				c.host.Notify(host.LevelInfo, MsgAlreadySignedIn)
			} else {
				c.host.Notify(host.LevelInfo, MsgSignedIn)
			}
		}
	case agent.IsCancellation(err):
		s.enter(StateCancelled)
	default:
		s.err = err
		s.enter(StateFailed)
		s.log.WithError(err).Warn("authorization failed")
		c.host.Notify(host.LevelError, MsgFailed)
	}
	return s.result()
}

func (c *Controller) handshake(ctx context.Context, s *session, p host.Progress) error {
	s.enter(StateRequesting)
	p.Report(MsgGeneratingURL)
	issued, err := c.agent.RequestAuthorizationURL(ctx)
	if err != nil {
		return interrupted(ctx, fmt.Errorf("requesting authorization URL: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if issued == nil {
		if st := c.agent.Status(); st != agent.StatusReady {
			return fmt.Errorf("no authorization URL issued, agent status %q", st)
		}
		s.enter(StateAlreadyAuthorized)
		return nil
	}
	s.code = issued.Code

	s.enter(StateAwaitingUserAction)
	if err := c.host.OpenExternal(ctx, issued.URL); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The URL has been shown to the user; they can open it by hand.
		s.log.WithError(err).Warn("could not open browser")
	}
	p.Report(MsgWaitingBrowser)

	s.enter(StatePollingToken)
	if err := c.agent.PollAuthorizationToken(ctx, s.code); err != nil {
		return interrupted(ctx, fmt.Errorf("polling authorization token: %w", err))
	}
	if st := c.agent.Status(); st != agent.StatusReady {
		return &invariantError{status: st}
	}
	s.enter(StateSucceeded)
	return nil
}

// interrupted reports a cancelled ctx in preference to the error it caused.
func interrupted(ctx context.Context, err error) error {
	if ctx.Err() != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}
