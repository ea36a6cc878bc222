package host

import (
	"context"

	"github.com/dshills/scribe/internal/cancel"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Progress receives status lines while a long-running task is underway.
type Progress interface {
	Report(message string)
}

// Task is the work run under a progress indicator. tok fires when the user
// asks to cancel.
type Task func(ctx context.Context, p Progress, tok cancel.Token) error

// Host is the set of user-interface services the flows depend on.
type Host interface {
	// WithProgress shows title while task runs and returns task's error.
	WithProgress(ctx context.Context, title string, task Task) error
	OpenExternal(ctx context.Context, url string) error
	// Pick returns the chosen index, or ok=false if the user dismissed it.
	Pick(ctx context.Context, title string, items []string) (index int, ok bool, err error)
	// Prompt returns the entered text, or ok=false if the user dismissed it.
	Prompt(ctx context.Context, title string) (value string, ok bool, err error)
	Notify(level Level, message string)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(string)

// Report implements Progress.
func (f ProgressFunc) Report(message string) { f(message) }
