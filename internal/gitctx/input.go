package gitctx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// InputBox is where a generated commit message is delivered.
type InputBox interface {
	Value() string
	SetValue(msg string) error
}

// FileInput writes the message into a commit message file, such as the one
// git passes to the prepare-commit-msg hook. Existing comment lines are kept
// below the message.
type FileInput struct {
	Path string
}

// Value returns the file's non-comment content.
func (f *FileInput) Value() string {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SetValue replaces the file's non-comment content with msg.
func (f *FileInput) SetValue(msg string) error {
	var comments []string
	if data, err := os.ReadFile(f.Path); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "#") {
				comments = append(comments, line)
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", f.Path, err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(msg))
	b.WriteString("\n")
	if len(comments) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(comments, "\n"))
		b.WriteString("\n")
	}
	if err := os.WriteFile(f.Path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return nil
}

// WriterInput prints the message to W.
type WriterInput struct {
	W io.Writer

	mu    sync.Mutex
	value string
}

// Value returns the last message written.
func (w *WriterInput) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// SetValue writes msg followed by a newline.
func (w *WriterInput) SetValue(msg string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.W, msg); err != nil {
		return err
	}
	w.value = msg
	return nil
}
