package application

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

// Default values applied by DefaultConfig and by LoadConfig for fields the
// YAML document leaves out.
const (
	DefaultConcurrency = 4
	DefaultCacheSize   = 256
)

// Config controls how the audit service runs audits.
// Use Config to pick the tolerance, group label handling, batch
// parallelism, and report caching for a deployment.
type Config struct {
	// Tolerance is the maximum disparity a metric may show and still pass.
	// It must lie in (0, 1].
	Tolerance float64 `yaml:"tolerance" validate:"tolerance"`
	// NormalizeGroups case-folds group labels before partitioning, so that
	// "Female" and "female" fall into the same group.
	NormalizeGroups bool `yaml:"normalize_groups"`
	// Concurrency bounds the number of audits AuditBatch runs at once.
	Concurrency int `yaml:"concurrency" validate:"min=1,max=256"`
	// Cache configures the report cache.
	Cache CacheConfig `yaml:"cache"`
	// Render controls how reports are presented by the CLI.
	Render RenderConfig `yaml:"render"`
}

// RenderConfig selects what a rendered report shows. It never changes the
// report itself or its verdict.
type RenderConfig struct {
	// Format is the output format: json, markdown, or text.
	Format string `yaml:"format" validate:"omitempty,oneof=json markdown text"`
	// Metrics restricts the rendered metric sections to the listed names or
	// aliases; empty renders every metric.
	Metrics []string `yaml:"metrics" validate:"max=16,dive,metricname"`
}

// CacheConfig bounds the in-memory report cache.
type CacheConfig struct {
	// Size is the maximum number of cached reports; 0 disables caching.
	Size int `yaml:"size" validate:"min=0,max=1000000"`
	// TTL expires cached reports after the given duration; 0 keeps them
	// until evicted.
	TTL time.Duration `yaml:"ttl" validate:"min=0"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Tolerance:   domain.DefaultTolerance,
		Concurrency: DefaultConcurrency,
		Cache:       CacheConfig{Size: DefaultCacheSize},
		Render:      RenderConfig{Format: "text"},
	}
}

// ParseConfig decodes a YAML document on top of DefaultConfig and validates
// the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, ports.NewConfigError("yaml", fmt.Errorf("failed to decode config: %w", err))
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ports.NewConfigError(path, ports.ErrConfigNotFound)
		}
		return Config{}, ports.NewConfigError(path, err)
	}
	return ParseConfig(data)
}

// ValidateConfig checks cfg against its struct tags. The first failing
// field is reported as a *ports.ConfigError keyed by its YAML path.
func ValidateConfig(cfg Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ports.NewConfigError(fe.Namespace(), fmt.Errorf("failed %q validation (value %v)", fe.Tag(), fe.Value()))
		}
		return ports.NewConfigError("config", err)
	}
	return nil
}
