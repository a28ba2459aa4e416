// Package config loads extsql project settings.
//
// Precedence, lowest first: built-in defaults, the extsql.yaml file,
// EXTSQL_* environment variables, then command-line flags (applied by the
// CLI).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when --config is not
// given.
const DefaultFile = "extsql.yaml"

// Config holds the settings shared by every command.
type Config struct {
	// Manifest is the descriptor manifest (CUE directory or YAML file).
	Manifest string `yaml:"manifest"`

	// Output is where schema writes the script; empty means stdout.
	Output string `yaml:"output"`

	// Archive is the SQLite database rendered scripts are saved to.
	Archive string `yaml:"archive"`

	// Header lines are written at the top of every script.
	Header []string `yaml:"header"`

	// Format is the CLI output format: text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{Format: "text"}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error unless required is set, which the CLI does
// when the path came from --config.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return cfg, fmt.Errorf("config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// applyEnv overrides cfg from EXTSQL_* variables. EXTSQL_HEADER sets a
// single header line.
func applyEnv(cfg *Config) {
	cfg.Manifest = getenv("EXTSQL_MANIFEST", cfg.Manifest)
	cfg.Output = getenv("EXTSQL_OUTPUT", cfg.Output)
	cfg.Archive = getenv("EXTSQL_ARCHIVE", cfg.Archive)
	cfg.Format = getenv("EXTSQL_FORMAT", cfg.Format)
	if h := getenv("EXTSQL_HEADER", ""); h != "" {
		cfg.Header = []string{h}
	}
}

// Validate checks values that every command depends on.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("config: invalid format %q (must be 'text' or 'json')", c.Format)
}
