package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/scribe/internal/commitmsg"
	"github.com/dshills/scribe/internal/config"
	"github.com/dshills/scribe/internal/gitctx"
	"github.com/dshills/scribe/internal/output"
	"github.com/dshills/scribe/internal/redact"
)

// commit-msg flags
var (
	flagWrite        string
	flagRepos        []string
	flagFormat       string
	flagPaths        string
	flagExclude      string
	flagContextLines int
	flagMaxDiffBytes int
	flagDepth        int
	flagNoRedact     bool
	flagNoCache      bool
	flagEdit         bool
)

var commitMsgCmd = &cobra.Command{
	Use:   "commit-msg",
	Short: "Ask the agent for a commit message",
	Long: "Ask the agent for a commit message describing the staged changes, or the " +
		"unstaged changes when nothing is staged. When several repositories are " +
		"found you are asked to pick one.",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if cmd.Flags().Changed("depth") {
			overrides["searchDepth"] = strconv.Itoa(flagDepth)
		}
		cfg, ok := loadConfig(overrides)
		if !ok {
			return nil
		}

		w, err := output.GetWriter(cfg.Format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		a, identity, err := newAgent(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		opts := []commitmsg.Option{
			commitmsg.WithLogger(logger),
			commitmsg.WithConcurrency(cfg.MaxConcurrency),
			commitmsg.WithEditing(flagEdit),
		}
		if !flagNoRedact {
			opts = append(opts, commitmsg.WithRedaction(redact.Policy{
				Secrets: cfg.Privacy.RedactSecrets,
				Paths:   cfg.Privacy.RedactPaths,
			}))
		}
		if !flagNoCache {
			c, err := openCache(cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			opts = append(opts, commitmsg.WithCache(c, identity))
		}

		paths := flagRepos
		if len(paths) == 0 {
			paths = []string{"."}
		}
		var stdout io.Writer = cmd.OutOrStdout()
		if cfg.Format == "json" {
			// The message travels inside the report.
			stdout = io.Discard
		}
		source := discoverSource(paths, cfg, stdout)

		start := time.Now()
		res, err := commitmsg.New(a, newHost(), source, opts...).Generate(cmd.Context(), interrupt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = errorExitCode(err)
			return nil
		}

		report := output.NewReport(version, res, time.Since(start))
		if res.Outcome == commitmsg.OutcomeWritten && flagWrite != "" {
			report.Destination = flagWrite
		}
		dst := cmd.ErrOrStderr()
		if cfg.Format == "json" {
			dst = cmd.OutOrStdout()
		}
		if err := w.Write(dst, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		exitCode = outcomeExitCode(res.Outcome)
		return nil
	},
}

// discoverSource lists the repositories around paths, delivering messages to
// the --write file or to stdout.
func discoverSource(paths []string, cfg config.Config, stdout io.Writer) commitmsg.RepositorySource {
	return commitmsg.RepositorySourceFunc(func(ctx context.Context) ([]commitmsg.Repository, error) {
		found, err := gitctx.Discover(ctx, paths, gitctx.DiscoverOptions{
			Depth: cfg.SearchDepth,
			Diff:  buildDiffOpts(cfg),
		})
		if err != nil {
			return nil, err
		}
		repos := make([]commitmsg.Repository, 0, len(found))
		for _, r := range found {
			if flagWrite != "" {
				r.SetInput(&gitctx.FileInput{Path: flagWrite})
			} else {
				r.SetInput(&gitctx.WriterInput{W: stdout})
			}
			repos = append(repos, r)
		}
		return repos, nil
	})
}

func outcomeExitCode(o commitmsg.Outcome) int {
	switch o {
	case commitmsg.OutcomeWritten, commitmsg.OutcomeEmptyDiff:
		return ExitSuccess
	case commitmsg.OutcomeAbandoned, commitmsg.OutcomeCancelled:
		return ExitCancelled
	default:
		return ExitRuntimeError
	}
}

func buildOverrides() map[string]string {
	m := agentOverrides()
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagContextLines > 0 {
		m["contextLines"] = strconv.Itoa(flagContextLines)
	}
	if flagMaxDiffBytes > 0 {
		m["maxDiffBytes"] = strconv.Itoa(flagMaxDiffBytes)
	}
	return m
}

func buildDiffOpts(cfg config.Config) gitctx.DiffOptions {
	opts := gitctx.DiffOptions{
		ContextLines: cfg.ContextLines,
		MaxDiffBytes: cfg.MaxDiffBytes,
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
	}
	if flagPaths != "" {
		opts.Include = splitComma(flagPaths)
	}
	if flagExclude != "" {
		opts.Exclude = append(append([]string(nil), opts.Exclude...), splitComma(flagExclude)...)
	}
	return opts
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func init() {
	f := commitMsgCmd.Flags()
	f.StringVar(&flagWrite, "write", "", "Write the message to this file instead of stdout (e.g. .git/COMMIT_EDITMSG)")
	f.StringArrayVar(&flagRepos, "repo", nil, "Directory to search for repositories (repeatable, default .)")
	f.StringVar(&flagFormat, "format", "", "Report format (text, json)")
	f.StringVar(&flagPaths, "paths", "", "Comma-separated include globs")
	f.StringVar(&flagExclude, "exclude", "", "Comma-separated exclude globs")
	f.IntVar(&flagContextLines, "context-lines", 0, "Diff context lines")
	f.IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum diff size in bytes")
	f.IntVar(&flagDepth, "depth", 0, "Directory levels searched for nested repositories (default from config)")
	f.BoolVar(&flagNoRedact, "no-redact", false, "Disable redaction")
	f.BoolVar(&flagNoCache, "no-cache", false, "Bypass the message cache")
	f.BoolVar(&flagEdit, "edit", false, "Offer the subject line for editing before writing")
	f.StringVar(&flagAgent, "agent", "", "Agent backend (http, direct)")
	f.StringVar(&flagAgentURL, "agent-url", "", "Agent base URL")
	f.StringVar(&flagProvider, "provider", "", "LLM provider for the direct agent")
	f.StringVar(&flagModel, "model", "", "Model for the direct agent")
}
