package diffprio

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	headerPrefix = "diff --git "

	// DefaultConcurrency bounds parallel stat lookups.
	DefaultConcurrency = 8
)

// Stater resolves a repository-relative path to its last-modified time.
type Stater interface {
	ModTime(ctx context.Context, path string) (time.Time, error)
}

// StaterFunc adapts a function to the Stater interface.
type StaterFunc func(ctx context.Context, path string) (time.Time, error)

// ModTime implements Stater.
func (f StaterFunc) ModTime(ctx context.Context, path string) (time.Time, error) {
	return f(ctx, path)
}

// Chunk is the diff text for exactly one file plus its priority key.
type Chunk struct {
	Index   int
	Path    string
	Content string
	ModTime time.Time
	// Known is false when the path could not be parsed or the lookup failed.
	Known bool
}

// Less reports whether c sorts before o. Unknown keys sort last; equal keys
// fall back to split order.
func (c Chunk) Less(o Chunk) bool {
	if c.Known != o.Known {
		return c.Known
	}
	if c.Known && !c.ModTime.Equal(o.ModTime) {
		return c.ModTime.Before(o.ModTime)
	}
	return c.Index < o.Index
}

// Split partitions diff into per-file chunks. Each chunk starts at a line
// beginning with "diff --git " and runs up to the next such line; any text
// preceding the first header belongs to the first chunk. A diff without
// headers yields nil.
func Split(diff string) []string {
	starts := headerOffsets(diff)
	if len(starts) == 0 {
		return nil
	}
	starts[0] = 0

	chunks := make([]string, 0, len(starts))
	for i, start := range starts {
		end := len(diff)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		chunks = append(chunks, diff[start:end])
	}
	return chunks
}

func headerOffsets(diff string) []int {
	var offsets []int
	for pos := 0; pos < len(diff); {
		if strings.HasPrefix(diff[pos:], headerPrefix) {
			offsets = append(offsets, pos)
		}
		nl := strings.IndexByte(diff[pos:], '\n')
		if nl < 0 {
			break
		}
		pos += nl + 1
	}
	return offsets
}

// PathFromChunk extracts the post-image path from the chunk's
// "diff --git a/<old> b/<new>" header.
func PathFromChunk(chunk string) (string, bool) {
	offsets := headerOffsets(chunk)
	if len(offsets) == 0 {
		return "", false
	}
	header := chunk[offsets[0]+len(headerPrefix):]
	if nl := strings.IndexByte(header, '\n'); nl >= 0 {
		header = header[:nl]
	}
	header = strings.TrimRight(header, "\r")

	// Quoted form: "a/x y" "b/x y"
	if strings.HasSuffix(header, `"`) {
		open := strings.LastIndex(header[:len(header)-1], ` "`)
		if open < 0 {
			return "", false
		}
		unq, err := strconv.Unquote(header[open+1:])
		if err != nil || !strings.HasPrefix(unq, "b/") {
			return "", false
		}
		return validPath(strings.TrimPrefix(unq, "b/"))
	}

	if !strings.HasPrefix(header, "a/") {
		return "", false
	}
	sep := strings.LastIndex(header, " b/")
	if sep < 0 {
		return "", false
	}
	return validPath(header[sep+len(" b/"):])
}

func validPath(p string) (string, bool) {
	if strings.TrimSpace(p) == "" {
		return "", false
	}
	return p, true
}

// Options tunes Prioritize.
type Options struct {
	Concurrency int
}

// Prioritize splits diff and orders the chunks by file modification time,
// oldest first. Lookups run concurrently; a failed lookup only demotes its
// own chunk to the end. The returned error is non-nil only when ctx was
// cancelled.
func Prioritize(ctx context.Context, diff string, st Stater, opts Options) ([]Chunk, error) {
	raw := Split(diff)
	if len(raw) == 0 {
		return nil, ctx.Err()
	}

	chunks := make([]Chunk, len(raw))
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, content := range raw {
		i := i
		chunks[i] = Chunk{Index: i, Content: content}
		path, ok := PathFromChunk(content)
		if !ok {
			continue
		}
		chunks[i].Path = path
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			mtime, err := st.ModTime(ctx, path)
			if err != nil {
				return nil
			}
			chunks[i].ModTime = mtime
			chunks[i].Known = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Less(chunks[j])
	})
	return chunks, nil
}

// Contents returns the text of each chunk in order.
func Contents(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

// Paths returns the parsed path of each chunk in order, skipping chunks
// whose header could not be parsed.
func Paths(chunks []Chunk) []string {
	var out []string
	for _, c := range chunks {
		if c.Path != "" {
			out = append(out, c.Path)
		}
	}
	return out
}
