package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository is a git working tree that can produce diffs and receive a
// commit message.
type Repository struct {
	name  string
	root  string
	repo  *git.Repository
	wt    *git.Worktree
	opts  DiffOptions
	input InputBox
}

// Open returns the repository enclosing path.
func Open(path string, opts DiffOptions) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree at %s: %w", path, err)
	}
	root := wt.Filesystem.Root()
	return &Repository{
		name: filepath.Base(root),
		root: root,
		repo: repo,
		wt:   wt,
		opts: opts,
	}, nil
}

// Name is the base name of the repository root.
func (r *Repository) Name() string { return r.name }

// Root is the absolute path of the working tree.
func (r *Repository) Root() string { return r.root }

// Input returns the message destination, or nil if none was set.
func (r *Repository) Input() InputBox { return r.input }

// SetInput sets the message destination.
func (r *Repository) SetInput(box InputBox) { r.input = box }

// Meta returns HEAD and branch information. An unborn HEAD yields empty
// Head and Branch.
func (r *Repository) Meta() (RepoMeta, error) {
	meta := RepoMeta{Root: r.root}
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("reading HEAD: %w", err)
	}
	meta.Head = head.Hash().String()
	if head.Name().IsBranch() {
		meta.Branch = head.Name().Short()
	}
	return meta, nil
}

// Collect returns the staged (index vs HEAD) or unstaged (worktree vs index)
// diff, filtered and truncated per the repository's DiffOptions.
func (r *Repository) Collect(ctx context.Context, staged bool) (DiffResult, error) {
	cmd := []string{"diff"}
	if staged {
		cmd = append(cmd, "--cached")
	}
	out, err := gitOutput(ctx, r.root, append(cmd, buildDiffArgs(r.opts)...)...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git %s: %w", strings.Join(cmd, " "), err)
	}
	return buildResult(out, r.opts), nil
}

// Diff returns the staged or unstaged diff text.
func (r *Repository) Diff(ctx context.Context, staged bool) (string, error) {
	res, err := r.Collect(ctx, staged)
	if err != nil {
		return "", err
	}
	return res.Diff, nil
}

// ModTime stats a repository-relative path in the working tree.
func (r *Repository) ModTime(ctx context.Context, path string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	fi, err := r.wt.Filesystem.Stat(filepath.FromSlash(path))
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// DiscoverOptions controls repository discovery.
type DiscoverOptions struct {
	// Depth is how many directory levels below each path are searched for
	// nested repositories. Zero finds only enclosing repositories.
	Depth int
	Diff  DiffOptions
}

// Discover returns the repositories enclosing each path and those nested
// beneath it, deduplicated by root, in discovery order. Paths outside any
// repository are skipped.
func Discover(ctx context.Context, paths []string, opts DiscoverOptions) ([]*Repository, error) {
	seen := make(map[string]bool)
	var repos []*Repository
	add := func(dir string) error {
		r, err := Open(dir, opts.Diff)
		if errors.Is(err, git.ErrRepositoryNotExists) || errors.Is(err, git.ErrIsBareRepository) {
			return nil
		}
		if err != nil {
			return err
		}
		if !seen[r.root] {
			seen[r.root] = true
			repos = append(repos, r)
		}
		return nil
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		if err := add(abs); err != nil {
			return nil, err
		}
		nested, err := nestedRoots(ctx, abs, opts.Depth)
		if err != nil {
			return nil, err
		}
		for _, dir := range nested {
			if err := add(dir); err != nil {
				return nil, err
			}
		}
	}
	return repos, nil
}

// nestedRoots finds directories below dir, up to depth levels, that contain
// a .git entry. Hidden directories are not descended into.
func nestedRoots(ctx context.Context, dir string, depth int) ([]string, error) {
	if depth <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil
	}
	var roots []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		child := filepath.Join(dir, e.Name())
		if _, err := os.Lstat(filepath.Join(child, git.GitDirName)); err == nil {
			roots = append(roots, child)
		}
		deeper, err := nestedRoots(ctx, child, depth-1)
		if err != nil {
			return nil, err
		}
		roots = append(roots, deeper...)
	}
	return roots, nil
}
