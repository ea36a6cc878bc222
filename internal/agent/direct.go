package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/scribe/internal/providers"
)

const commitSystemPrompt = `You write git commit messages. You are given a diff split into one section per file, ordered with the least recently modified files first.

Rules:
1. First line: imperative mood summary, at most 72 characters, no trailing period.
2. If the change needs explanation, add a blank line and a short body wrapped at 72 columns.
3. Describe what changed and why, not how the diff looks.
4. Do not mention file names unless they are essential.

Respond with ONLY the commit message. No markdown fences, no preamble.`

// defaultPromptBytes caps the diff text sent to the provider.
const defaultPromptBytes = 200000

// Direct is an always-authorized Agent that asks an LLM provider for commit
// messages.
type Direct struct {
	completer providers.Completer
	maxBytes  int
}

// NewDirect returns a Direct agent backed by c.
func NewDirect(c providers.Completer) *Direct {
	return &Direct{completer: c, maxBytes: defaultPromptBytes}
}

// RequestAuthorizationURL never issues a URL; Direct is always ready.
func (d *Direct) RequestAuthorizationURL(ctx context.Context) (*AuthorizationURL, error) {
	return nil, ctx.Err()
}

// PollAuthorizationToken has nothing to wait for.
func (d *Direct) PollAuthorizationToken(ctx context.Context, code string) error {
	return ctx.Err()
}

func (d *Direct) Status() Status { return StatusReady }

// GenerateCommitMessage implements Agent.
func (d *Direct) GenerateCommitMessage(ctx context.Context, chunks []string) (string, error) {
	resp, err := d.completer.Complete(ctx, providers.Request{
		SystemPrompt: commitSystemPrompt,
		UserPrompt:   BuildCommitPrompt(chunks, d.maxBytes),
		MaxTokens:    512,
	})
	if err != nil {
		if IsCancellation(err) {
			return "", err
		}
		return "", &Error{Op: "commit message", Message: fmt.Sprintf("%s: %v", d.completer.Name(), err)}
	}

	msg := cleanMessage(resp.Content)
	if msg == "" {
		return "", &Error{Op: "commit message", Message: d.completer.Name() + " returned an empty message"}
	}
	return msg, nil
}

// BuildCommitPrompt joins the chunks in order, stopping before the chunk that
// would push the prompt past maxBytes. The first chunk is always included.
func BuildCommitPrompt(chunks []string, maxBytes int) string {
	var b strings.Builder
	b.WriteString("Write a commit message for the following changes.\n")
	b.WriteString("\n--- BEGIN DIFF ---\n")
	omitted := 0
	for i, c := range chunks {
		if maxBytes > 0 && i > 0 && b.Len()+len(c) > maxBytes {
			omitted = len(chunks) - i
			break
		}
		b.WriteString(c)
		if !strings.HasSuffix(c, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("--- END DIFF ---\n")
	if omitted > 0 {
		fmt.Fprintf(&b, "(%d more file(s) changed but omitted for length)\n", omitted)
	}
	return b.String()
}

func cleanMessage(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		end := len(lines)
		if end > 1 && strings.TrimSpace(lines[end-1]) == "```" {
			end--
		}
		content = strings.Join(lines[1:end], "\n")
	}
	return strings.TrimSpace(content)
}
