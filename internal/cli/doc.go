// Package cli wires together the Cobra command tree for the scribe binary.
//
// It defines the root command and all subcommands (auth, commit-msg, hook,
// config, models, cache, version), binds flags, reads configuration, builds
// the agent and terminal host, and maps flow outcomes to exit codes.
package cli
