package configs

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config file, env prefix and data folders
const AppName = "sample-analyzer"

// DefaultConfigDir returns $HOME/.config/sample-analyzer
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

// DefaultDataDir returns $HOME/.local/share/sample-analyzer
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", AppName)
}

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	// Application defaults
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("config_dir", d.ConfigDir)
	v.SetDefault("data_dir", d.DataDir)

	// Analysis defaults
	v.SetDefault("analysis.num_peaks", d.Analysis.NumPeaks)
	v.SetDefault("analysis.tempo_max_seconds", d.Analysis.TempoMaxSeconds)
	v.SetDefault("analysis.silence_max_seconds", d.Analysis.SilenceMaxSeconds)
	v.SetDefault("analysis.min_bpm_duration", d.Analysis.MinBPMDuration)
	v.SetDefault("analysis.detect_bpm", d.Analysis.DetectBPM)
	v.SetDefault("analysis.classify", d.Analysis.Classify)
	v.SetDefault("analysis.waveform", d.Analysis.Waveform)

	// Library defaults
	v.SetDefault("library.workers", d.Library.Workers)
	v.SetDefault("library.extensions", d.Library.Extensions)
	v.SetDefault("library.follow_symlinks", d.Library.FollowSymlinks)

	// Cache defaults; the path follows data_dir unless set
	v.SetDefault("cache.enabled", d.Cache.Enabled)

	v.SetDefault("watch.settle_delay", d.Watch.SettleDelay)

	// Display defaults
	v.SetDefault("display.colors", d.Display.Colors)
	v.SetDefault("display.progress", d.Display.Progress)
	v.SetDefault("display.include_waveform", d.Display.IncludeWaves)
}

// GetDefaultConfig returns a complete default configuration
func GetDefaultConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",
		ConfigDir:    DefaultConfigDir(),
		DataDir:      dataDir,
		Analysis:     GetDefaultAnalysisConfig(),
		Library:      GetDefaultLibraryConfig(),
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "analysis.db"),
		},
		Watch: WatchConfig{
			SettleDelay: 750 * time.Millisecond,
		},
		Display: DisplayConfig{
			Colors:       true,
			Progress:     true,
			IncludeWaves: false,
		},
	}
}

// GetDefaultAnalysisConfig returns default per-file analysis settings
func GetDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		NumPeaks:          128,
		TempoMaxSeconds:   30,
		SilenceMaxSeconds: 30,
		MinBPMDuration:    2 * time.Second,
		DetectBPM:         true,
		Classify:          true,
		Waveform:          true,
	}
}

// GetDefaultLibraryConfig returns default folder scanning settings
func GetDefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{
		Workers:        runtime.NumCPU(),
		Extensions:     []string{"wav", "mp3", "flac", "ogg", "aiff", "aif"},
		FollowSymlinks: false,
	}
}

// FastAnalysisConfig skips tempo detection and uses fewer peaks, for quick
// browsing of large libraries. Classification reads the same 30 s as the
// default so fast and full scans agree on the sample type.
func FastAnalysisConfig() AnalysisConfig {
	c := GetDefaultAnalysisConfig()
	c.NumPeaks = 64
	c.DetectBPM = false
	return c
}
