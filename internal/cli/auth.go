package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/scribe/internal/agent"
	"github.com/dshills/scribe/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to the agent",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize scribe with the agent in your browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := loadConfig(agentOverrides())
		if !ok {
			return nil
		}
		a, _, err := newAgent(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		log := logger.WithField("command", "auth login")
		ctrl := auth.NewController(a, newHost(),
			auth.WithLogger(logger),
			auth.WithSuccessNotifications(true),
			auth.WithHooks(auth.Hooks{
				OnStart: func(id string) { log.WithField("session", id).Debug("sign-in started") },
				OnEnd: func(r auth.Result) {
					log.WithFields(logrus.Fields{"session": r.SessionID, "state": r.State.String()}).Debug("sign-in finished")
				},
			}),
		)

		res := ctrl.Run(cmd.Context(), interrupt)
		exitCode = authExitCode(res)
		if res.Err != nil {
			// The host already showed the failure notification.
			log.WithError(res.Err).Debug("sign-in failed")
		}
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether scribe is signed in",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := loadConfig(agentOverrides())
		if !ok {
			return nil
		}
		a, _, err := newAgent(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		status := a.Status()
		if c, ok := a.(*agent.Client); ok {
			status, err = c.RefreshStatus(cmd.Context())
			if err != nil && !agent.IsUnauthenticated(err) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = errorExitCode(err)
				return nil
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s agent)\n", status, cfg.Agent)
		if status != agent.StatusReady {
			exitCode = ExitAuthError
		}
		return nil
	},
}

func authExitCode(res auth.Result) int {
	switch {
	case res.State.Succeeded():
		return ExitSuccess
	case res.State == auth.StateCancelled:
		return ExitCancelled
	default:
		return ExitAuthError
	}
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	for _, c := range []*cobra.Command{authLoginCmd, authStatusCmd} {
		c.Flags().StringVar(&flagAgent, "agent", "", "Agent backend (http, direct)")
		c.Flags().StringVar(&flagAgentURL, "agent-url", "", "Agent base URL")
	}
}
