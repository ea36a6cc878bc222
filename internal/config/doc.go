// Package config loads and merges scribe configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SCRIBE_AGENT, SCRIBE_AGENT_URL, SCRIBE_MODEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/scribe/config.json)
//  4. Built-in defaults
//
// SCRIBE_AGENT_TOKEN is read from the environment only and is never written
// to the config file.
package config
