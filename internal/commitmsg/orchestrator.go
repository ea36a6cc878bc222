package commitmsg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dshills/scribe/internal/agent"
	"github.com/dshills/scribe/internal/cache"
	"github.com/dshills/scribe/internal/cancel"
	"github.com/dshills/scribe/internal/diffprio"
	"github.com/dshills/scribe/internal/host"
	"github.com/dshills/scribe/internal/logging"
	"github.com/dshills/scribe/internal/redact"
)

// Outcome is how a Generate call ended.
type Outcome int

const (
	// OutcomeFailed accompanies a non-nil error from Generate.
	OutcomeFailed Outcome = iota
	OutcomeWritten
	OutcomeNoRepository
	OutcomeAbandoned
	OutcomeEmptyDiff
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeWritten:
		return "written"
	case OutcomeNoRepository:
		return "no-repository"
	case OutcomeAbandoned:
		return "abandoned"
	case OutcomeEmptyDiff:
		return "empty-diff"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// User-visible text.
const (
	PickTitle        = "Choose a repository"
	ProgressTitle    = "Generating commit message"
	MsgNoRepository  = "No git repository found."
	MsgEmptyDiff     = "No changes to describe."
	MsgPrioritizing  = "Ordering changed files…"
	MsgAskingAgent   = "Asking the agent…"
	MsgCachedMessage = "Using cached message."
	// EditTitle prefixes the proposed subject line when editing is enabled.
	EditTitle = "Subject (Enter keeps it, or type a replacement)"
)

// Result describes a Generate call.
type Result struct {
	Outcome Outcome
	// Repository is the chosen repository's root, if one was chosen.
	Repository string
	// Staged reports whether the staged diff was used.
	Staged  bool
	Message string
	// Files are the diff's paths in the order sent to the agent.
	Files  []string
	Cached bool
	// Omitted lists files left out of the request to respect the size limit.
	Omitted []string
	// Branch is the checked-out branch, empty when detached or unknown.
	Branch string
	// Edited reports whether the user replaced the agent's subject line.
	Edited bool
}

// MessageCache stores generated messages. *cache.Cache satisfies it.
type MessageCache interface {
	Get(key string) (string, bool)
	Put(key, message string) error
}

// Orchestrator generates commit messages.
type Orchestrator struct {
	agent       agent.Agent
	host        host.Host
	repos       RepositorySource
	cache       MessageCache
	identity    string
	redaction   redact.Policy
	concurrency int
	edit        bool
	log         logrus.FieldLogger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache enables message caching. identity distinguishes agents so
// different backends never share entries.
func WithCache(c MessageCache, identity string) Option {
	return func(o *Orchestrator) {
		o.cache = c
		o.identity = identity
	}
}

// WithRedaction redacts chunks before they leave the process.
func WithRedaction(p redact.Policy) Option {
	return func(o *Orchestrator) { o.redaction = p }
}

// WithConcurrency bounds concurrent stat calls during prioritization.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// WithEditing asks the user to confirm or replace the subject line before
// the message is written.
func WithEditing(on bool) Option {
	return func(o *Orchestrator) { o.edit = on }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.log = logging.Component(l, "commitmsg") }
}

// New returns an Orchestrator.
func New(a agent.Agent, h host.Host, repos RepositorySource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agent:       a,
		host:        h,
		repos:       repos,
		concurrency: diffprio.DefaultConcurrency,
		log:         logging.Component(nil, "commitmsg"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var errNoChunks = errors.New("diff has no file chunks")

// Generate runs one message generation. tok cancels it, as does the host's
// own progress cancellation.
func (o *Orchestrator) Generate(ctx context.Context, tok cancel.Token) (Result, error) {
	ctx, release := cancel.Bridge(ctx, tok)
	defer release()

	repo, res, err := o.choose(ctx)
	if repo == nil || err != nil {
		return o.settle(ctx, res, err)
	}
	res.Repository = repo.Root()
	log := o.log.WithField("repository", repo.Root())
	if m, ok := repo.(MetaReporter); ok {
		if meta, err := m.Meta(); err != nil {
			log.WithError(err).Debug("reading repository metadata")
		} else {
			res.Branch = meta.Branch
		}
	}

	diff, staged, omitted, err := changes(ctx, repo)
	if err != nil {
		return o.settle(ctx, res, err)
	}
	res.Staged = staged
	res.Omitted = omitted
	if len(omitted) > 0 {
		log.WithField("omitted", len(omitted)).Info("diff truncated to the size limit")
	}
	if diff == "" {
		log.Debug("no staged or unstaged changes")
		o.host.Notify(host.LevelInfo, MsgEmptyDiff)
		res.Outcome = OutcomeEmptyDiff
		return res, nil
	}

	err = o.host.WithProgress(ctx, ProgressTitle, func(ctx context.Context, p host.Progress, ptok cancel.Token) error {
		ctx, release := cancel.Bridge(ctx, ptok)
		defer release()

		p.Report(MsgPrioritizing)
		chunks, err := diffprio.Prioritize(ctx, diff, repo, diffprio.Options{Concurrency: o.concurrency})
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return errNoChunks
		}
		res.Files = diffprio.Paths(chunks)
		contents := diffprio.Contents(chunks)
		if o.redaction.Enabled() {
			contents = o.redaction.Apply(contents, diffprio.PathFromChunk)
		}

		var key string
		if o.cache != nil {
			key = cache.MessageKey(o.identity, contents)
			if msg, ok := o.cache.Get(key); ok {
				p.Report(MsgCachedMessage)
				res.Message = msg
				res.Cached = true
				return nil
			}
		}

		p.Report(MsgAskingAgent)
		msg, err := o.agent.GenerateCommitMessage(ctx, contents)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		res.Message = msg
		if o.cache != nil {
			if err := o.cache.Put(key, msg); err != nil {
				log.WithError(err).Warn("caching commit message")
			}
		}
		return nil
	})
	if errors.Is(err, errNoChunks) {
		o.host.Notify(host.LevelInfo, MsgEmptyDiff)
		res.Outcome = OutcomeEmptyDiff
		return res, nil
	}
	if err != nil {
		return o.settle(ctx, res, fmt.Errorf("generating commit message: %w", err))
	}
	// A cancel that lands after the reply still leaves the input untouched.
	if ctx.Err() != nil {
		return o.settle(ctx, res, ctx.Err())
	}

	if o.edit {
		subject, ok, err := o.host.Prompt(ctx, EditTitle+": "+subjectLine(res.Message))
		if err != nil {
			return o.settle(ctx, res, fmt.Errorf("editing commit message: %w", err))
		}
		if !ok {
			if ctx.Err() != nil {
				return o.settle(ctx, res, ctx.Err())
			}
			res.Outcome = OutcomeAbandoned
			return res, nil
		}
		if subject = strings.TrimSpace(subject); subject != "" && subject != subjectLine(res.Message) {
			res.Message = replaceSubject(res.Message, subject)
			res.Edited = true
		}
	}

	input := repo.Input()
	if input == nil {
		return res, fmt.Errorf("repository %s has no commit message input", repo.Root())
	}
	if err := input.SetValue(res.Message); err != nil {
		return res, fmt.Errorf("writing commit message: %w", err)
	}
	log.WithFields(logrus.Fields{"files": len(res.Files), "cached": res.Cached, "staged": res.Staged}).Info("commit message written")
	res.Outcome = OutcomeWritten
	return res, nil
}

// choose returns the target repository, or nil with a terminal result.
func (o *Orchestrator) choose(ctx context.Context) (Repository, Result, error) {
	repos, err := o.repos.Repositories(ctx)
	if err != nil {
		return nil, Result{}, fmt.Errorf("listing repositories: %w", err)
	}
	switch len(repos) {
	case 0:
		o.host.Notify(host.LevelWarn, MsgNoRepository)
		return nil, Result{Outcome: OutcomeNoRepository}, nil
	case 1:
		return repos[0], Result{}, nil
	}

	sorted := SortRepositories(repos)
	labels := make([]string, len(sorted))
	for i, r := range sorted {
		labels[i] = pickerLabel(r)
	}
	idx, ok, err := o.host.Pick(ctx, PickTitle, labels)
	if err != nil {
		return nil, Result{}, fmt.Errorf("choosing repository: %w", err)
	}
	if !ok || idx < 0 || idx >= len(sorted) {
		return nil, Result{Outcome: OutcomeAbandoned}, nil
	}
	return sorted[idx], Result{}, nil
}

// changes returns the staged diff, or the unstaged diff when nothing is
// staged. Staged changes always win, even if unstaged ones exist too.
func changes(ctx context.Context, repo Repository) (diff string, staged bool, omitted []string, err error) {
	diff, omitted, err = collect(ctx, repo, true)
	if err != nil {
		return "", false, nil, fmt.Errorf("reading staged changes: %w", err)
	}
	if strings.TrimSpace(diff) != "" {
		return diff, true, omitted, nil
	}
	diff, omitted, err = collect(ctx, repo, false)
	if err != nil {
		return "", false, nil, fmt.Errorf("reading unstaged changes: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return "", false, nil, nil
	}
	return diff, false, omitted, nil
}

func collect(ctx context.Context, repo Repository, staged bool) (string, []string, error) {
	if c, ok := repo.(DiffCollector); ok {
		res, err := c.Collect(ctx, staged)
		return res.Diff, res.Omitted, err
	}
	diff, err := repo.Diff(ctx, staged)
	return diff, nil, err
}

func subjectLine(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return strings.TrimSpace(line)
}

// replaceSubject swaps the first line of msg, keeping the body.
func replaceSubject(msg, subject string) string {
	_, body, found := strings.Cut(strings.TrimSpace(msg), "\n")
	if !found {
		return subject
	}
	return subject + "\n" + body
}

// settle turns cancellation into OutcomeCancelled and passes other errors
// through.
func (o *Orchestrator) settle(ctx context.Context, res Result, err error) (Result, error) {
	if err == nil {
		return res, nil
	}
	if agent.IsCancellation(err) || ctx.Err() != nil {
		o.log.Debug("commit message generation cancelled")
		res.Outcome = OutcomeCancelled
		return res, nil
	}
	return res, err
}
