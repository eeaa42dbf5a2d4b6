package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" json:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" json:"output_format" yaml:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" json:"config_dir" yaml:"config_dir"`
	DataDir      string `mapstructure:"data_dir" json:"data_dir" yaml:"data_dir"`

	// Per-file analysis settings
	Analysis AnalysisConfig `mapstructure:"analysis" json:"analysis" yaml:"analysis"`

	// Folder scanning
	Library LibraryConfig `mapstructure:"library" json:"library" yaml:"library"`

	// Analysis cache
	Cache CacheConfig `mapstructure:"cache" json:"cache" yaml:"cache"`

	// Folder watching
	Watch WatchConfig `mapstructure:"watch" json:"watch" yaml:"watch"`

	// Terminal display settings
	Display DisplayConfig `mapstructure:"display" json:"display" yaml:"display"`
}

// AnalysisConfig contains per-file analysis settings
type AnalysisConfig struct {
	NumPeaks          int           `mapstructure:"num_peaks" json:"num_peaks" yaml:"num_peaks"`
	TempoMaxSeconds   float64       `mapstructure:"tempo_max_seconds" json:"tempo_max_seconds" yaml:"tempo_max_seconds"`
	SilenceMaxSeconds float64       `mapstructure:"silence_max_seconds" json:"silence_max_seconds" yaml:"silence_max_seconds"`
	MinBPMDuration    time.Duration `mapstructure:"min_bpm_duration" json:"min_bpm_duration" yaml:"min_bpm_duration"`
	DetectBPM         bool          `mapstructure:"detect_bpm" json:"detect_bpm" yaml:"detect_bpm"`
	Classify          bool          `mapstructure:"classify" json:"classify" yaml:"classify"`
	Waveform          bool          `mapstructure:"waveform" json:"waveform" yaml:"waveform"`
}

// LibraryConfig contains folder scanning settings
type LibraryConfig struct {
	Workers        int      `mapstructure:"workers" json:"workers" yaml:"workers"`
	Extensions     []string `mapstructure:"extensions" json:"extensions" yaml:"extensions"`
	FollowSymlinks bool     `mapstructure:"follow_symlinks" json:"follow_symlinks" yaml:"follow_symlinks"`
}

// CacheConfig contains analysis cache settings
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}

// WatchConfig contains folder watcher settings
type WatchConfig struct {
	SettleDelay time.Duration `mapstructure:"settle_delay" json:"settle_delay" yaml:"settle_delay"`
}

// DisplayConfig contains terminal display settings
type DisplayConfig struct {
	Colors       bool `mapstructure:"colors" json:"colors" yaml:"colors"`
	Progress     bool `mapstructure:"progress" json:"progress" yaml:"progress"`
	IncludeWaves bool `mapstructure:"include_waveform" json:"include_waveform" yaml:"include_waveform"`
}

var validOutputFormats = []string{"json", "yaml", "table", "csv"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if config.Cache.Path == "" && config.DataDir != "" {
		config.Cache.Path = filepath.Join(config.DataDir, "analysis.db")
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Analysis.NumPeaks < 0 {
		return fmt.Errorf("num peaks cannot be negative")
	}

	if config.Analysis.TempoMaxSeconds <= 0 {
		return fmt.Errorf("tempo max seconds must be positive")
	}

	if config.Analysis.SilenceMaxSeconds <= 0 {
		return fmt.Errorf("silence max seconds must be positive")
	}

	if config.Analysis.MinBPMDuration < 0 {
		return fmt.Errorf("min bpm duration cannot be negative")
	}

	if config.Library.Workers < 0 {
		return fmt.Errorf("library workers cannot be negative")
	}

	if config.Cache.Enabled && config.Cache.Path == "" {
		return fmt.Errorf("cache path is required when the cache is enabled")
	}

	if config.OutputFormat != "" && !slices.Contains(validOutputFormats, strings.ToLower(config.OutputFormat)) {
		return fmt.Errorf("unsupported output format %q (want one of %s)",
			config.OutputFormat, strings.Join(validOutputFormats, ", "))
	}

	if config.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(config.LogLevel)) {
		return fmt.Errorf("unsupported log level %q", config.LogLevel)
	}

	return nil
}

// AnalysisOptions converts the analysis section into analyzer options
func (c *Config) AnalysisOptions() sample.Options {
	return sample.Options{
		NumPeaks:          c.Analysis.NumPeaks,
		TempoMaxSeconds:   c.Analysis.TempoMaxSeconds,
		SilenceMaxSeconds: c.Analysis.SilenceMaxSeconds,
		MinBPMDuration:    c.Analysis.MinBPMDuration,
		DetectBPM:         c.Analysis.DetectBPM,
		Classify:          c.Analysis.Classify,
		Waveform:          c.Analysis.Waveform,
	}
}

// WriteConfigFile writes config as YAML to path, creating parent folders
func WriteConfigFile(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
