package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dshills/scribe/internal/commitmsg"
)

// Report is the result of one commit-msg run.
type Report struct {
	Tool       string   `json:"tool"`
	Version    string   `json:"version"`
	Outcome    string   `json:"outcome"`
	Repository string   `json:"repository,omitempty"`
	Branch     string   `json:"branch,omitempty"`
	Source     string   `json:"source,omitempty"`
	Files      []string `json:"files,omitempty"`
	// Omitted lists files left out to respect the diff size limit.
	Omitted []string `json:"omitted,omitempty"`
	Edited  bool     `json:"edited,omitempty"`
	Cached  bool     `json:"cached"`
	Message string   `json:"message,omitempty"`
	// Destination is where the message was written, if not stdout.
	Destination string `json:"destination,omitempty"`
	Timing      Timing `json:"timing"`
}

// Timing records how long the run took.
type Timing struct {
	TotalMs int64 `json:"totalMs"`
}

// NewReport builds a Report from an orchestrator result.
func NewReport(version string, res commitmsg.Result, elapsed time.Duration) *Report {
	r := &Report{
		Tool:       "scribe",
		Version:    version,
		Outcome:    res.Outcome.String(),
		Repository: res.Repository,
		Branch:     res.Branch,
		Files:      res.Files,
		Omitted:    res.Omitted,
		Edited:     res.Edited,
		Cached:     res.Cached,
		Message:    res.Message,
		Timing:     Timing{TotalMs: elapsed.Milliseconds()},
	}
	if res.Repository != "" && res.Outcome != commitmsg.OutcomeEmptyDiff {
		if res.Staged {
			r.Source = "staged"
		} else {
			r.Source = "unstaged"
		}
	}
	return r
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
