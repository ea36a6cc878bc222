// Package agent defines the contract scribe consumes from a coding-assistant
// agent and ships two implementations of it.
//
// [Client] talks to a running agent over HTTP: it issues authorization URLs,
// polls for the token exchange, and asks the agent to write commit messages.
// [Direct] needs no agent process; it is always authorized and writes commit
// messages through an LLM provider from package providers.
//
// Callers receive the agent as an explicit [Agent] value so that tests can
// substitute their own implementation.
package agent
