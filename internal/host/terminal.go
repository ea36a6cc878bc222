package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/dshills/scribe/internal/cancel"
	"github.com/dshills/scribe/internal/logging"
)

// Terminal is a Host for command-line use.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	copyURLs    bool
	opener      func(ctx context.Context, url string) error
	log         logrus.FieldLogger

	readerOnce sync.Once
	reader     *bufio.Reader
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithIO sets the input and output streams. Interactivity is re-detected
// from them.
func WithIO(in io.Reader, out io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.in = in
		t.out = out
		t.interactive = isTTY(in) && isTTY(out)
	}
}

// WithInteractive forces Bubble Tea rendering on or off.
func WithInteractive(on bool) TerminalOption {
	return func(t *Terminal) { t.interactive = on }
}

// WithClipboard copies opened URLs to the system clipboard.
func WithClipboard(on bool) TerminalOption {
	return func(t *Terminal) { t.copyURLs = on }
}

// WithOpener replaces the browser launcher.
func WithOpener(fn func(ctx context.Context, url string) error) TerminalOption {
	return func(t *Terminal) { t.opener = fn }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) TerminalOption {
	return func(t *Terminal) { t.log = logging.Component(l, "host") }
}

// NewTerminal returns a Terminal on stdin and stderr. Output goes to stderr so
// that stdout stays clean for the generated message.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		in:       os.Stdin,
		out:      os.Stderr,
		copyURLs: true,
		opener:   OpenBrowser,
		log:      logging.Component(nil, "host"),
	}
	t.interactive = isTTY(t.in) && isTTY(t.out)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Interactive reports whether Bubble Tea rendering is in use.
func (t *Terminal) Interactive() bool { return t.interactive }

func isTTY(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WithProgress implements Host. Interactive terminals show a spinner and
// treat Ctrl+C or Esc as a cancel request; plain terminals print each
// report on its own line and cancel when ctx is done.
func (t *Terminal) WithProgress(ctx context.Context, title string, task Task) error {
	src := cancel.NewSource()
	stop := context.AfterFunc(ctx, src.Cancel)
	defer stop()

	if t.interactive {
		return runSpinner(ctx, t.in, t.out, title, src, task)
	}

	fmt.Fprintf(t.out, "%s\n", title)
	report := ProgressFunc(func(msg string) {
		fmt.Fprintf(t.out, "  %s\n", msg)
	})
	return task(ctx, report, src)
}

// OpenExternal implements Host. The URL is always printed, and copied to the
// clipboard when enabled, so the user can open it by hand if no browser
// starts.
func (t *Terminal) OpenExternal(ctx context.Context, url string) error {
	fmt.Fprintf(t.out, "Open this URL to continue: %s\n", color.CyanString(url))
	if t.copyURLs {
		if err := clipboard.WriteAll(url); err != nil {
			t.log.WithError(err).Debug("clipboard unavailable")
		} else {
			fmt.Fprintln(t.out, color.HiBlackString("(copied to clipboard)"))
		}
	}
	if t.opener == nil {
		return nil
	}
	return t.opener(ctx, url)
}

// Pick implements Host.
func (t *Terminal) Pick(ctx context.Context, title string, items []string) (int, bool, error) {
	if len(items) == 0 {
		return 0, false, errors.New("nothing to pick from")
	}
	if t.interactive {
		return runPicker(ctx, t.in, t.out, title, items)
	}

	fmt.Fprintln(t.out, title)
	for i, it := range items {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, it)
	}
	for {
		fmt.Fprintf(t.out, "Select 1-%d (empty to cancel): ", len(items))
		line, ok, err := t.readLine(ctx)
		if err != nil || !ok {
			return 0, false, err
		}
		if line == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(items) {
			return n - 1, true, nil
		}
		fmt.Fprintln(t.out, color.YellowString("invalid selection %q", line))
	}
}

// Prompt implements Host.
func (t *Terminal) Prompt(ctx context.Context, title string) (string, bool, error) {
	if t.interactive {
		return runPrompt(ctx, t.in, t.out, title)
	}
	fmt.Fprintf(t.out, "%s: ", title)
	return t.readLine(ctx)
}

// Notify implements Host.
func (t *Terminal) Notify(level Level, message string) {
	switch level {
	case LevelError:
		fmt.Fprintln(t.out, color.RedString("✗ %s", message))
	case LevelWarn:
		fmt.Fprintln(t.out, color.YellowString("! %s", message))
	default:
		fmt.Fprintln(t.out, color.GreenString("✓ %s", message))
	}
}

// readLine reads one trimmed line. EOF is a dismissal, not an error.
func (t *Terminal) readLine(ctx context.Context) (string, bool, error) {
	t.readerOnce.Do(func() { t.reader = bufio.NewReader(t.in) })

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case r := <-ch:
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return "", false, r.err
		}
		if errors.Is(r.err, io.EOF) && r.line == "" {
			return "", false, nil
		}
		return strings.TrimSpace(r.line), true, nil
	}
}
