// Package diffprio orders the per-file sections of a unified diff by how
// long ago each file was modified.
//
// [Split] partitions a multi-file diff on its "diff --git" headers without
// dropping or duplicating any text. [Prioritize] looks up every file's
// modification time concurrently and returns the chunks oldest first, with
// files whose time cannot be determined last. The order is deterministic
// regardless of which lookups finish first.
package diffprio
