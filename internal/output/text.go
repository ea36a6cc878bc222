package output

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs a short human-readable summary. The message itself is
// delivered separately, so it is not repeated here.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	switch report.Outcome {
	case "written":
		ew.printf("Commit message for %s", report.Repository)
		if report.Branch != "" {
			ew.printf(" on %s", report.Branch)
		}
		if report.Source != "" {
			ew.printf(" (%s changes", report.Source)
			ew.printf(", %d %s", len(report.Files), plural(len(report.Files), "file", "files"))
			if report.Cached {
				ew.printf(", cached")
			}
			if report.Edited {
				ew.printf(", edited")
			}
			ew.printf(")")
		}
		if report.Destination != "" {
			ew.printf(" written to %s", report.Destination)
		}
		ew.println("")
		if len(report.Files) > 0 {
			ew.printf("Files, oldest change first: %s\n", strings.Join(report.Files, ", "))
		}
		if len(report.Omitted) > 0 {
			ew.printf("Left out to fit the size limit: %s\n", strings.Join(report.Omitted, ", "))
		}
	case "no-repository":
		ew.println("No git repository found.")
	case "abandoned":
		if report.Repository != "" {
			ew.println("Message discarded, nothing written.")
		} else {
			ew.println("No repository chosen.")
		}
	case "empty-diff":
		ew.printf("Nothing to describe in %s.\n", report.Repository)
	case "cancelled":
		ew.println("Cancelled.")
	default:
		ew.printf("Outcome: %s\n", report.Outcome)
	}
	return ew.err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
