// Package gitctx finds git repositories and extracts their diffs.
//
// [Discover] locates the repository enclosing each given path, plus any
// repositories nested beneath it, using go-git. Diffs are produced by
// shelling out to git so that user configuration (diff drivers, attributes)
// applies. Results are filtered by include/exclude glob patterns and trimmed
// to a maximum byte size on file boundaries.
//
// Each [Repository] carries an [InputBox], the destination for a generated
// commit message.
package gitctx
