package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/scribe/internal/diffprio"
)

// DiffOptions controls how diffs are gathered.
type DiffOptions struct {
	ContextLines int
	MaxDiffBytes int
	Include      []string
	Exclude      []string
}

// DiffResult is a filtered, size-limited diff.
type DiffResult struct {
	Diff string
	// Omitted lists files dropped to stay under MaxDiffBytes.
	Omitted []string
}

// RepoMeta describes the checked-out HEAD.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

func buildDiffArgs(opts DiffOptions) []string {
	var args []string
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	args = append(args, "--")
	for _, p := range opts.Include {
		if p != "**/*" {
			args = append(args, p)
		}
	}
	return args
}

func buildResult(diff string, opts DiffOptions) DiffResult {
	chunks := diffprio.Split(diff)

	// Filter excludes before truncating so excluded files don't consume the byte budget
	if len(opts.Exclude) > 0 {
		chunks = filterExcluded(chunks, opts.Exclude)
	}

	var omitted []string
	if opts.MaxDiffBytes > 0 {
		chunks, omitted = truncate(chunks, opts.MaxDiffBytes)
	}

	return DiffResult{
		Diff:    strings.Join(chunks, ""),
		Omitted: omitted,
	}
}

func filterExcluded(chunks []string, excludes []string) []string {
	var kept []string
	for _, c := range chunks {
		path, ok := diffprio.PathFromChunk(c)
		if !ok || !MatchesAny(path, excludes) {
			kept = append(kept, c)
		}
	}
	return kept
}

// truncate keeps whole chunks while they fit in max bytes. The first chunk
// is always kept so a single large file still produces a message.
func truncate(chunks []string, max int) (kept []string, omitted []string) {
	total := 0
	for i, c := range chunks {
		if i > 0 && total+len(c) > max {
			for _, rest := range chunks[i:] {
				if p, ok := diffprio.PathFromChunk(rest); ok {
					omitted = append(omitted, p)
				}
			}
			return chunks[:i], omitted
		}
		total += len(c)
	}
	return chunks, nil
}

// MatchesAny returns true if the path matches any of the given glob patterns.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
