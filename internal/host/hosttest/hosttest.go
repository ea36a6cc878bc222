// Package hosttest provides a scripted host.Host for tests.
package hosttest

import (
	"context"
	"sync"

	"github.com/dshills/scribe/internal/cancel"
	"github.com/dshills/scribe/internal/host"
)

// Notification is a recorded Notify call.
type Notification struct {
	Level   host.Level
	Message string
}

// Host records every interaction and answers from its scripted fields.
// The zero value dismisses pickers and prompts.
type Host struct {
	// PickIndex and PickOK answer Pick.
	PickIndex int
	PickOK    bool
	PickErr   error

	PromptValue string
	PromptOK    bool

	OpenErr error

	// Source, when set, is the token handed to progress tasks so tests
	// can cancel from outside.
	Source *cancel.Source

	// BeforeTask runs after the progress UI is "shown" and before the task.
	BeforeTask func(src *cancel.Source)

	mu            sync.Mutex
	progressTitle []string
	reports       []string
	opened        []string
	picks         [][]string
	prompts       []string
	notifications []Notification
}

var _ host.Host = (*Host)(nil)

// WithProgress implements host.Host.
func (h *Host) WithProgress(ctx context.Context, title string, task host.Task) error {
	h.mu.Lock()
	h.progressTitle = append(h.progressTitle, title)
	src := h.Source
	if src == nil {
		src = cancel.NewSource()
	}
	h.mu.Unlock()

	if h.BeforeTask != nil {
		h.BeforeTask(src)
	}
	report := host.ProgressFunc(func(msg string) {
		h.mu.Lock()
		h.reports = append(h.reports, msg)
		h.mu.Unlock()
	})
	return task(ctx, report, src)
}

// OpenExternal implements host.Host.
func (h *Host) OpenExternal(_ context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, url)
	return h.OpenErr
}

// Pick implements host.Host.
func (h *Host) Pick(_ context.Context, _ string, items []string) (int, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.picks = append(h.picks, append([]string(nil), items...))
	return h.PickIndex, h.PickOK, h.PickErr
}

// Prompt implements host.Host.
func (h *Host) Prompt(_ context.Context, title string) (string, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompts = append(h.prompts, title)
	return h.PromptValue, h.PromptOK, nil
}

// Prompts returns the titles passed to Prompt.
func (h *Host) Prompts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.prompts...)
}

// Notify implements host.Host.
func (h *Host) Notify(level host.Level, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = append(h.notifications, Notification{Level: level, Message: message})
}

// Reports returns every progress report so far.
func (h *Host) Reports() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.reports...)
}

// ProgressTitles returns the titles passed to WithProgress.
func (h *Host) ProgressTitles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.progressTitle...)
}

// Opened returns every URL passed to OpenExternal.
func (h *Host) Opened() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.opened...)
}

// Picks returns the item lists shown by Pick, in call order.
func (h *Host) Picks() [][]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]string(nil), h.picks...)
}

// Notifications returns every Notify call.
func (h *Host) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Notification(nil), h.notifications...)
}
