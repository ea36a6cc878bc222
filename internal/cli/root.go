package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/scribe/internal/cancel"
	"github.com/dshills/scribe/internal/logging"
)

const version = "0.3.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
	ExitCancelled    = 130
)

var (
	flagLogLevel  string
	flagLogFormat string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Commit messages from your coding agent",
	Long: "Scribe signs in to a coding-assistant agent and asks it to write commit messages " +
		"for your staged (or unstaged) changes.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := flagLogLevel
		if level == "" {
			level = os.Getenv("SCRIBE_LOG_LEVEL")
		}
		if flagVerbose {
			level = "debug"
		}
		logger = logging.New(logging.Options{Level: level, Format: flagLogFormat})
	},
}

// logger is replaced in PersistentPreRun once flags are parsed.
var logger logrus.FieldLogger = logging.Discard()

// interrupt fires on SIGINT/SIGTERM. Commands pass it to the flows as their
// cancellation token.
var interrupt = cancel.NewSource()

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Run executes the root command and returns an exit code.
func Run() int {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		for range sig {
			interrupt.Cancel()
		}
	}()

	return execute(context.Background(), os.Args[1:])
}

func execute(ctx context.Context, args []string) int {
	exitCode = ExitSuccess
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		if exitCode == ExitSuccess {
			return ExitUsageError
		}
	}
	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print scribe version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scribe version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error); default from SCRIBE_LOG_LEVEL or warn")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "json", "Log format (json, text)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(commitMsgCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}
