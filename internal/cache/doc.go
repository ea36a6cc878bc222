// Package cache remembers generated commit messages between runs.
//
// A message is stored under a key derived from the agent identity and the
// exact redacted chunks it was given, so any change to either produces a
// fresh request. Messages older than the configured TTL are treated as
// misses and deleted when next looked up.
package cache
