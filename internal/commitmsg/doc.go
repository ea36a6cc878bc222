// Package commitmsg asks the agent to write a commit message for a
// repository's pending changes.
//
// [Orchestrator.Generate] picks a repository (prompting when several are
// available), takes its staged diff or, if nothing is staged, its unstaged
// diff, orders the per-file chunks with diffprio, and delivers the agent's
// message to the repository's input box. Cancellation and dismissal are
// outcomes; only real failures are returned as errors.
package commitmsg
