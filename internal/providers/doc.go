// Package providers implements the Completer interface for each supported LLM
// provider.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), and Ollama / LM
// Studio for local models. They back the direct agent, which writes commit
// messages without a remote agent process.
//
// All providers share a common retry helper with exponential back-off for
// rate-limit and server errors. HTTP clients are injected via a client field
// so that tests can redirect calls to local httptest servers.
//
// Use [New] to obtain a Completer by provider name and model string.
package providers
