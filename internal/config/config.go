// Package config holds the geocrown configuration, loadable from a config
// file, environment variables, and command-line flags.
package config

import (
	"fmt"

	"github.com/canopy-tools/geocrown/internal/projection"
)

// Config is the complete configuration for the geocrown CLI.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Projection run settings
	Project ProjectConfig `mapstructure:"project" yaml:"project" json:"project"`

	// Console output settings
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// ProjectConfig configures the projection pipeline. Confidence and
// OverlapShift use negative values to mean "not set".
type ProjectConfig struct {
	TilesDir       string  `mapstructure:"tiles_dir" yaml:"tiles_dir" json:"tiles_dir"`
	PredictionsDir string  `mapstructure:"predictions_dir" yaml:"predictions_dir" json:"predictions_dir"`
	OutputDir      string  `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	MultiClass     bool    `mapstructure:"multi_class" yaml:"multi_class" json:"multi_class"`
	Workers        int     `mapstructure:"workers" yaml:"workers" json:"workers"`
	Confidence     float64 `mapstructure:"confidence" yaml:"confidence" json:"confidence"`
	OverlapShift   float64 `mapstructure:"overlap_shift" yaml:"overlap_shift" json:"overlap_shift"`
	Simplify       float64 `mapstructure:"simplify" yaml:"simplify" json:"simplify"`
	OverlayDir     string  `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// OutputConfig configures progress and statistics reporting.
type OutputConfig struct {
	Progress         bool `mapstructure:"progress" yaml:"progress" json:"progress"`
	ProgressInterval int  `mapstructure:"progress_interval" yaml:"progress_interval" json:"progress_interval"`
	Quiet            bool `mapstructure:"quiet" yaml:"quiet" json:"quiet"`
	Stats            bool `mapstructure:"stats" yaml:"stats" json:"stats"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Project: ProjectConfig{
			Workers:      projection.DefaultWorkers,
			Confidence:   -1,
			OverlapShift: -1,
		},
		Output: OutputConfig{
			Progress:         true,
			ProgressInterval: 50,
		},
	}
}

// Validate checks value ranges. Required paths are checked by the command
// that needs them, not here.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Project.Workers < 1 {
		return fmt.Errorf("project.workers must be >= 1, got %d", c.Project.Workers)
	}
	if c.Project.Confidence > 1 {
		return fmt.Errorf("project.confidence must be <= 1, got %g", c.Project.Confidence)
	}
	if c.Output.ProgressInterval < 1 {
		return fmt.Errorf("output.progress_interval must be >= 1, got %d", c.Output.ProgressInterval)
	}
	return nil
}

// ConfidenceThreshold returns the configured threshold, or nil when
// filtering is disabled.
func (c *ProjectConfig) ConfidenceThreshold() *float64 {
	if c.Confidence < 0 {
		return nil
	}
	v := c.Confidence
	return &v
}

// OverlapMargin returns the configured overlap shift, or nil when edge-crown
// suppression is disabled.
func (c *ProjectConfig) OverlapMargin() *float64 {
	if c.OverlapShift < 0 {
		return nil
	}
	v := c.OverlapShift
	return &v
}
