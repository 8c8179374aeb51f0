// Package config defines the command-line surface of the server binary:
// port, advertised identity, gameplay toggles, and the paths/addresses the
// ambient loaders (manifest, master list) are configured from.
package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"github.com/ghostfleet/bcserver/discovery"
)

// Config holds every flag the server binary accepts. Tags follow the
// go-flags convention of short/long/description/default.
type Config struct {
	Port int `short:"p" long:"port" description:"UDP port to listen on" default:"22101"`

	Name string `short:"n" long:"name" description:"Advertised server name" default:"Unnamed Server"`
	Map  string `short:"m" long:"map" description:"Mission script name to run" default:"Multi1"`

	MaxPlayers int `long:"max-players" description:"Maximum concurrent peers (hard cap 6)" default:"6"`

	CollisionDamage bool `long:"collision-damage" description:"Enable ship-to-ship collision damage"`
	FriendlyFire    bool `long:"friendly-fire" description:"Enable damage between same-team ships"`

	TimeLimit int `long:"time-limit" description:"Match time limit in minutes, 0 = no limit" default:"0"`
	FragLimit int `long:"frag-limit" description:"Match frag limit, 0 = no limit" default:"0"`

	ManifestPath string `long:"manifest" description:"Path to the client hash manifest used for checksum validation"`
	StrictChecksum bool `long:"strict-checksum" description:"Reject peers whose checksum response doesn't match the manifest"`

	ShipClassPath string `long:"ship-classes" description:"Path to the ship class registry JSON; built-in defaults are used if unset"`

	Masters []string `long:"master" description:"Master server address (host:port); repeatable" default:""`
	NoMasters bool `long:"no-masters" description:"Disable master-server heartbeating entirely"`

	MetricsPort int `long:"metrics-port" description:"Port to serve Prometheus metrics on, 0 disables" default:"0"`

	LogLevel string `short:"v" long:"log-level" description:"Log verbosity: debug, info, warn, error" default:"info"`
	LogFile  string `long:"log-file" description:"Optional path to write logs to, in addition to stderr"`
}

// Parse parses os.Args-style arguments into a Config, applying defaults and
// go-flags' usual --help handling.
func Parse(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Name = "bcserver"
	parser.LongDescription = "Authoritative dedicated server for the core space-combat multiplayer protocol."

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that can never produce a working server,
// so startup failure (spec exit code 1) happens before any socket is opened.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.MaxPlayers <= 0 || c.MaxPlayers > 6 {
		return fmt.Errorf("config: max-players must be in 1..6, got %d", c.MaxPlayers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log-level %q", c.LogLevel)
	}
	for _, m := range c.Masters {
		if m == "" {
			continue
		}
		if !discovery.ValidHostPort(m) {
			return fmt.Errorf("config: invalid master address %q", m)
		}
	}
	return nil
}
