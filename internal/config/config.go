// Package config resolves cardbox settings from, in increasing precedence:
// built-in defaults, an optional config file, CARDBOX_* environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

const envPrefix = "CARDBOX_"

// Config holds the resolved settings.
type Config struct {
	DBPath   string // sqlite database file
	ReposDir string // where git deck sources are cloned
	Verbose  bool   // enable info-level logging
}

// Load resolves the configuration, parsing flags out of args. It returns the
// config and the remaining positional arguments, and ensures the data
// directory for the database exists.
func Load(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("cardbox", flag.ContinueOnError)
	fs.String("db", "", "path to the card database")
	fs.String("repos", "", "directory for cloned deck repositories")
	fs.BoolP("verbose", "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	k := koanf.New(".")

	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, nil, err
	}
	k.Set("db", filepath.Join(dataDir, "data.db"))
	k.Set("repos", filepath.Join(dataDir, "repos"))
	k.Set("verbose", false)

	if path, ok := configFile(); ok {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, nil, fmt.Errorf("failed to load flags: %w", err)
	}

	cfg := &Config{
		DBPath:   k.String("db"),
		ReposDir: k.String("repos"),
		Verbose:  k.Bool("verbose"),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, fs.Args(), nil
}

// defaultDataDir returns $XDG_DATA_HOME/cardbox, falling back to
// $HOME/.local/share/cardbox.
func defaultDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "cardbox"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "cardbox"), nil
}

// configFile returns the path of the optional config file if it exists.
func configFile() (string, bool) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		dir = filepath.Join(home, ".config")
	}
	path := filepath.Join(dir, "cardbox", "config.yml")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
