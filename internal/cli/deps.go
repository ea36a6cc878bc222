package cli

import (
	"fmt"
	"os"

	"github.com/dshills/scribe/internal/agent"
	"github.com/dshills/scribe/internal/cache"
	"github.com/dshills/scribe/internal/config"
	"github.com/dshills/scribe/internal/host"
	"github.com/dshills/scribe/internal/providers"
)

// Shared agent flags
var (
	flagAgent    string
	flagAgentURL string
	flagProvider string
	flagModel    string
)

// newHost builds the user-interface host. Tests replace it.
var newHost = func() host.Host {
	return host.NewTerminal(host.WithLogger(logger))
}

// newAgent builds the configured agent and returns a cache identity for it.
func newAgent(cfg config.Config) (agent.Agent, string, error) {
	switch cfg.Agent {
	case config.AgentDirect:
		p, err := providers.New(cfg.Provider, cfg.Model)
		if err != nil {
			return nil, "", err
		}
		return agent.NewDirect(p), fmt.Sprintf("direct:%s:%s", p.Name(), cfg.Model), nil
	case config.AgentHTTP:
		opts := []agent.ClientOption{agent.WithLogger(logger)}
		if cfg.AgentToken != "" {
			opts = append(opts, agent.WithToken(cfg.AgentToken))
		}
		if cfg.PollIntervalMs > 0 {
			opts = append(opts, agent.WithPollInterval(cfg.PollInterval()))
		}
		return agent.NewClient(cfg.AgentURL, opts...), "http:" + cfg.AgentURL, nil
	default:
		return nil, "", fmt.Errorf("unknown agent %q", cfg.Agent)
	}
}

// loadConfig merges flags into the config and validates the result. Errors
// are reported and mapped to the usage exit code.
func loadConfig(overrides map[string]string) (config.Config, bool) {
	cfg, err := config.Load(overrides)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return config.Config{}, false
	}
	return cfg, true
}

func agentOverrides() map[string]string {
	m := make(map[string]string)
	if flagAgent != "" {
		m["agent"] = flagAgent
	}
	if flagAgentURL != "" {
		m["agentURL"] = flagAgentURL
	}
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	return m
}

func openCache(cfg config.Config) (*cache.Cache, error) {
	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

// errorExitCode maps a failure to an exit code.
func errorExitCode(err error) int {
	if agent.IsUnauthenticated(err) || providers.IsAuthError(err) {
		return ExitAuthError
	}
	return ExitRuntimeError
}
