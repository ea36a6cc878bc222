// Package redact removes secrets from diff chunks before they are sent to
// the agent.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, and provider-specific tokens (Anthropic, OpenAI, GitHub, Slack).
//
// Path-based redaction is also supported: chunks whose file path matches a
// configured glob pattern keep their "diff --git" header but have the rest
// of their content replaced with [REDACTED].
package redact
