// Package host is the user-facing side of scribe's flows: progress with a
// cancel key, pickers, prompts, notifications and opening URLs.
//
// [Host] is what the auth and commit-message flows consume. [Terminal]
// implements it with Bubble Tea when attached to a TTY and with plain line
// I/O otherwise. Package hosttest provides a scripted fake for tests.
package host
