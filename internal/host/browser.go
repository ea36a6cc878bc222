package host

import (
	"context"
	"fmt"
	"io"

	"github.com/cli/browser"
)

// launchURL hands a URL to the platform's default handler. Tests replace it.
var launchURL = browser.OpenURL

func init() {
	// Handler output would land in the middle of the terminal UI.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenBrowser opens url with the platform's default handler. It returns
// ctx.Err() without waiting for the handler once ctx is done.
func OpenBrowser(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	launch := launchURL
	done := make(chan error, 1)
	go func() { done <- launch(url) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("opening browser: %w", err)
		}
		return nil
	}
}
