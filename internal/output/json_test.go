package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/dshills/scribe/internal/commitmsg"
)

func TestJSONWriter(t *testing.T) {
	report := NewReport("1.0", commitmsg.Result{
		Outcome:    commitmsg.OutcomeWritten,
		Repository: "/tmp/repo",
		Files:      []string{"a.go"},
		Cached:     true,
		Message:    "Fix a",
	}, 42*time.Millisecond)

	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Outcome != "written" {
		t.Errorf("Outcome = %q, want %q", got.Outcome, "written")
	}
	if got.Source != "unstaged" {
		t.Errorf("Source = %q, want %q", got.Source, "unstaged")
	}
	if got.Message != "Fix a" || !got.Cached {
		t.Errorf("report = %+v", got)
	}
	if got.Timing.TotalMs != 42 {
		t.Errorf("TotalMs = %d, want 42", got.Timing.TotalMs)
	}
}

func TestNewReport_EmptyDiffHasNoSource(t *testing.T) {
	r := NewReport("1.0", commitmsg.Result{Outcome: commitmsg.OutcomeEmptyDiff, Repository: "/r"}, 0)
	if r.Source != "" {
		t.Errorf("Source = %q, want empty", r.Source)
	}
}

func TestJSONWriter_OmittedAndBranch(t *testing.T) {
	report := NewReport("1.0", commitmsg.Result{
		Outcome:    commitmsg.OutcomeWritten,
		Repository: "/tmp/repo",
		Branch:     "feature/x",
		Staged:     true,
		Omitted:    []string{"big.sql"},
	}, 0)

	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, report); err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Branch != "feature/x" || len(got.Omitted) != 1 || got.Omitted[0] != "big.sql" {
		t.Errorf("report = %+v", got)
	}
}
