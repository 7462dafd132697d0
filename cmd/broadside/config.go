// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package main

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/broadside-game/broadside/internal/account"
)

// Default listen addresses and timeouts.
const (
	defaultAPIAddr        = "127.0.0.1:8080"
	defaultMetricsAddr    = "127.0.0.1:9090"
	defaultConnectTimeout = 30 * time.Second
)

// Config holds the full server configuration.
type Config struct {
	Server struct {
		Addr        string `koanf:"addr"`
		MetricsAddr string `koanf:"metrics_addr"`
	} `koanf:"server"`
	Database struct {
		URL            string        `koanf:"url"`
		ConnectTimeout time.Duration `koanf:"connect_timeout"`
	} `koanf:"database"`
	Account struct {
		DefaultRank int32 `koanf:"default_rank"`
	} `koanf:"account"`
	Log struct {
		Format string `koanf:"format"`
		Level  string `koanf:"level"`
	} `koanf:"log"`
}

// loadConfig merges, in order of increasing precedence: built-in
// defaults, the YAML config file named by --config, command-line flags,
// and the DATABASE_URL environment variable.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "merge flags").
			Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAPIAddr
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = defaultMetricsAddr
	}
	if cfg.Database.ConnectTimeout <= 0 {
		cfg.Database.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.Account.DefaultRank == 0 {
		cfg.Account.DefaultRank = account.DefaultRank
	}

	return &cfg, nil
}

// requireDatabaseURL returns the configured database URL or a config
// error naming both sources.
func (c *Config) requireDatabaseURL() (string, error) {
	if c.Database.URL == "" {
		return "", oops.Code("CONFIG_INVALID").
			Errorf("database URL is required (set database.url or DATABASE_URL)")
	}
	return c.Database.URL, nil
}
