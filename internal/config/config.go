// Package config provides configuration loading for the robospec tools.
//
// Configuration is read from a single YAML file named by:
//   - the --config flag passed to the command, or
//   - the ROBOSPEC_CONFIG environment variable.
//
// Without either, Default is used. Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "ROBOSPEC_CONFIG"

// Config is the robospec tool configuration.
type Config struct {
	// CatalogFile is a YAML catalog replacing the built-in one.
	// Default: "" (built-in catalog)
	CatalogFile string `yaml:"catalog_file"`

	// LogLevel is the operational log level: debug, info, warn or error.
	// Default: warn
	LogLevel string `yaml:"log_level"`

	// TraceFile receives a CBOR trace of every encode and decode call.
	// Default: "" (no trace)
	TraceFile string `yaml:"trace_file"`

	// Format is the report format: text, json or yaml.
	// Default: text
	Format string `yaml:"format"`

	// Uppercase renders hex codes in upper case.
	Uppercase bool `yaml:"uppercase"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Format:   "text",
	}
}

// Load loads the file named by ROBOSPEC_CONFIG, or returns Default when the
// variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Resolve picks the config source for a command: an explicit path wins over
// ROBOSPEC_CONFIG.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	return Load()
}

// LoadFile loads configuration from path on top of Default.
// The only expansion performed is ${VAR} and ${VAR:-default} in file paths.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data on top of Default. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.CatalogFile = expandVars(c.CatalogFile)
	c.TraceFile = expandVars(c.TraceFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level: %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	switch strings.ToLower(c.Format) {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("invalid format: %q (valid: text, json, yaml)", c.Format))
	}

	return errors.Join(errs...)
}
