package commitmsg

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dshills/scribe/internal/gitctx"
)

// Repository is a candidate for message generation.
type Repository interface {
	Name() string
	Root() string
	Diff(ctx context.Context, staged bool) (string, error)
	ModTime(ctx context.Context, path string) (time.Time, error)
	Input() gitctx.InputBox
}

// DiffCollector is implemented by repositories that report which files a
// size-limited diff left out. *gitctx.Repository implements it.
type DiffCollector interface {
	Collect(ctx context.Context, staged bool) (gitctx.DiffResult, error)
}

// MetaReporter is implemented by repositories that know their checked-out
// branch.
type MetaReporter interface {
	Meta() (gitctx.RepoMeta, error)
}

// RepositorySource lists the repositories available to the user.
type RepositorySource interface {
	Repositories(ctx context.Context) ([]Repository, error)
}

// RepositorySourceFunc adapts a function to RepositorySource.
type RepositorySourceFunc func(ctx context.Context) ([]Repository, error)

// Repositories implements RepositorySource.
func (f RepositorySourceFunc) Repositories(ctx context.Context) ([]Repository, error) {
	return f(ctx)
}

// Static returns a RepositorySource that always lists repos.
func Static(repos ...Repository) RepositorySource {
	return RepositorySourceFunc(func(context.Context) ([]Repository, error) {
		return repos, nil
	})
}

// SortRepositories returns repos in picker order. Each repository is listed
// right before the repositories nested inside it; repositories sharing the
// same enclosing repository (or none) are ordered by name, then root. repos
// is not modified.
func SortRepositories(repos []Repository) []Repository {
	type node struct {
		repo     Repository
		segments []string
		children []int
	}
	nodes := make([]node, len(repos))
	for i, r := range repos {
		nodes[i] = node{repo: r, segments: segments(r.Root())}
	}

	// A repository hangs under the deepest other repository enclosing it.
	var top []int
	for i := range nodes {
		parent := -1
		for j := range nodes {
			if len(nodes[j].segments) >= len(nodes[i].segments) || !within(nodes[i].segments, nodes[j].segments) {
				continue
			}
			if parent < 0 || len(nodes[j].segments) > len(nodes[parent].segments) {
				parent = j
			}
		}
		if parent < 0 {
			top = append(top, i)
		} else {
			nodes[parent].children = append(nodes[parent].children, i)
		}
	}

	byName := func(ids []int) {
		sort.SliceStable(ids, func(a, b int) bool {
			x, y := nodes[ids[a]], nodes[ids[b]]
			if x.repo.Name() != y.repo.Name() {
				return x.repo.Name() < y.repo.Name()
			}
			return compareSegments(x.segments, y.segments) < 0
		})
	}

	out := make([]Repository, 0, len(repos))
	var walk func(ids []int)
	walk = func(ids []int) {
		byName(ids)
		for _, id := range ids {
			out = append(out, nodes[id].repo)
			walk(nodes[id].children)
		}
	}
	walk(top)
	return out
}

func segments(root string) []string {
	clean := filepath.ToSlash(filepath.Clean(root))
	var segs []string
	for _, s := range strings.Split(clean, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// within reports whether path lies inside (or at) root.
func within(path, root []string) bool {
	if len(root) > len(path) {
		return false
	}
	for i := range root {
		if path[i] != root[i] {
			return false
		}
	}
	return true
}

func compareSegments(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func pickerLabel(r Repository) string {
	return r.Name() + "  " + r.Root()
}
