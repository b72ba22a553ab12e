// Package config provides YAML configuration parsing for GaugeBoard.
//
// This package enables running GaugeBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Engine Gauges
//	port: 8080
//	mode: simulated
//	sample_interval: 500ms
//
//	simulator:
//	  low: 0
//	  high: 180
//	  speed: 10
//
//	sources:
//	  - name: rpm
//	    value: 900
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minSampleInterval is the minimum allowed sampling interval for production
// configs. Sources are sampled in-process so the floor can be low; it only
// keeps the SSE stream and the log volume sane.
const minSampleInterval = 50 * time.Millisecond

// Config is the root configuration structure for GaugeBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "GaugeBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// Mode selects how the primary value is produced: "simulated" or
	// "static". Defaults to "simulated".
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Mode string `yaml:"mode"`

	// SampleInterval is the time between sampling cycles.
	// Accepts duration strings like "500ms", "1s", "1m".
	// Defaults to 1s.
	SampleInterval Duration `yaml:"sample_interval"`

	// Simulator configures the simulated value. All fields are optional;
	// omitted fields keep the simulator defaults (low 0, high 180,
	// speed 10).
	Simulator SimulatorConfig `yaml:"simulator"`

	// Static configures the fixed value served in static mode.
	Static StaticConfig `yaml:"static"`

	// Sources defines additional fixed-value sources, each served under
	// its own lookup key next to the primary "current" value.
	Sources []SourceConfig `yaml:"sources"`
}

// SimulatorConfig adjusts the simulated value's oscillation.
//
// Pointer fields distinguish "not set" from an explicit zero, mirroring the
// simulator's partial-reconfiguration contract.
type SimulatorConfig struct {
	// Low is the first oscillation bound. It need not be below High.
	Low *float64 `yaml:"low"`

	// High is the second oscillation bound.
	High *float64 `yaml:"high"`

	// Speed is the advance rate in units per second. Must be positive
	// if set. A running simulator silently ignores bad speeds, but a
	// config file typo should fail loudly instead.
	Speed *float64 `yaml:"speed"`
}

// StaticConfig holds the fixed value served in static mode.
type StaticConfig struct {
	// Value is the reading reported for the primary key. Defaults to 0.
	Value float64 `yaml:"value"`
}

// SourceConfig defines one additional fixed-value source.
type SourceConfig struct {
	// Name is the lookup key: the path segment in /api/value/<name> and
	// the field name in /api/snapshot. The "current" key is reserved for
	// the mode-selected primary source.
	// Supports environment variable substitution.
	Name string `yaml:"name"`

	// Value is the fixed reading reported for this source.
	Value float64 `yaml:"value"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Mode and source names.
// Defaults are applied for Port (8080), Mode ("simulated"), and
// SampleInterval (1s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Mode == "" {
		cfg.Mode = "simulated"
	}
	if cfg.SampleInterval == 0 {
		cfg.SampleInterval = Duration(time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.SampleInterval.Duration() < minSampleInterval {
		return fmt.Errorf("sample_interval must be at least %s, got %s", minSampleInterval, c.SampleInterval.Duration())
	}

	expandedMode, err := expandEnvVars(c.Mode)
	if err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	c.Mode = expandedMode

	if c.Mode != "simulated" && c.Mode != "static" {
		return fmt.Errorf("mode must be %q or %q, got %q", "simulated", "static", c.Mode)
	}

	if c.Simulator.Speed != nil && *c.Simulator.Speed <= 0 {
		return fmt.Errorf("simulator: speed must be positive, got %v", *c.Simulator.Speed)
	}

	seen := map[string]struct{}{"current": {}}
	for i := range c.Sources {
		src := &c.Sources[i]

		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}

		expanded, err := expandEnvVars(src.Name)
		if err != nil {
			return fmt.Errorf("sources[%d] (%s): name: %w", i, src.Name, err)
		}
		src.Name = expanded

		if src.Name == "current" {
			return fmt.Errorf("sources[%d]: name %q is reserved for the mode-selected source", i, src.Name)
		}
		if _, exists := seen[src.Name]; exists {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		seen[src.Name] = struct{}{}
	}

	if c.Mode == "static" && c.Simulator != (SimulatorConfig{}) {
		return errors.New("simulator settings have no effect in static mode; remove the simulator section or set mode: simulated")
	}

	return nil
}
