// Package config loads Roadmap's repo-local durable tunables from
// .roadmap/config.yaml (spec.md §9, SPEC_FULL.md §10.3), the same
// read-file-or-return-zero-value idiom as the teacher's
// internal/config.LoadLocalConfig: no panics, no viper singleton for this
// layer. The CLI-layer spf13/viper binding (flags/env/--json/--no-color)
// lives in cmd/roadmap and composes on top of what this package returns.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to any field left zero by config.yaml or the file's
// absence entirely.
const (
	DefaultCheckTimeout       = 5 * time.Minute
	DefaultStoreBusyTimeoutMS = 5000
	DefaultResolverMargin     = 0.08
	DefaultResolverMinScore   = 0.2
)

// Config is Roadmap's repo-local durable settings, read from
// .roadmap/config.yaml.
type Config struct {
	// CheckTimeoutSeconds bounds how long a `check` lets prove_cmd run
	// before it is treated as timed out (spec.md §4.6). Zero in the file
	// means "use the default", not "no timeout" — pass -1 explicitly via
	// the CLI's --timeout flag for that.
	CheckTimeoutSeconds int `yaml:"check-timeout-seconds"`

	// StoreBusyTimeoutMS is the SQLite busy_timeout pragma value (spec.md
	// §5). The Store's own retry loop around busy transactions has a fixed
	// 5-second budget that this setting does not change.
	StoreBusyTimeoutMS int `yaml:"store-busy-timeout-ms"`

	// ResolverMargin is the minimum score gap the lenient Resolver
	// requires between its top two fuzzy candidates to resolve without
	// asking (spec.md §4.4).
	ResolverMargin float64 `yaml:"resolver-ambiguity-margin"`

	// ResolverMinScore discards fuzzy candidates below this combined
	// score rather than ever surfacing them.
	ResolverMinScore float64 `yaml:"resolver-min-score"`

	// DefaultScopes seeds new claims created without an explicit --scope.
	DefaultScopes []string `yaml:"default-scopes"`
}

// CheckTimeout returns the configured check timeout as a duration.
func (c *Config) CheckTimeout() time.Duration {
	if c.CheckTimeoutSeconds == 0 {
		return DefaultCheckTimeout
	}
	return time.Duration(c.CheckTimeoutSeconds) * time.Second
}

// defaults returns a Config with every field set to its default value.
func defaults() *Config {
	return &Config{
		CheckTimeoutSeconds: int(DefaultCheckTimeout / time.Second),
		StoreBusyTimeoutMS:  DefaultStoreBusyTimeoutMS,
		ResolverMargin:      DefaultResolverMargin,
		ResolverMinScore:    DefaultResolverMinScore,
	}
}

// Load reads and parses path, returning default-valued settings (not an
// error) if the file does not exist. A malformed file that does exist is
// reported, since that is very likely a typo the operator wants surfaced
// rather than silently ignored.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path) // #nosec G304 - path is the repo's own .roadmap/config.yaml
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	parsed := defaults()
	if err := yaml.Unmarshal(data, parsed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}
