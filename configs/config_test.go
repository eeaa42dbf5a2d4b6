package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults(viper.GetViper())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "table", cfg.OutputFormat)
	assert.Equal(t, 128, cfg.Analysis.NumPeaks)
	assert.Equal(t, 30.0, cfg.Analysis.TempoMaxSeconds)
	assert.Equal(t, 2*time.Second, cfg.Analysis.MinBPMDuration)
	assert.True(t, cfg.Analysis.DetectBPM)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join(cfg.DataDir, "analysis.db"), cfg.Cache.Path)
	assert.Contains(t, cfg.Library.Extensions, "flac")
	assert.Positive(t, cfg.Library.Workers)

	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults(viper.GetViper())

	viper.Set("analysis.num_peaks", 256)
	viper.Set("analysis.min_bpm_duration", "3s")
	viper.Set("cache.path", "/tmp/custom.db")
	viper.Set("data_dir", "/tmp/data")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Analysis.NumPeaks)
	assert.Equal(t, 3*time.Second, cfg.Analysis.MinBPMDuration)
	assert.Equal(t, "/tmp/custom.db", cfg.Cache.Path)

	opts := cfg.AnalysisOptions()
	assert.Equal(t, 256, opts.NumPeaks)
	assert.Equal(t, 3*time.Second, opts.MinBPMDuration)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"negative peaks", func(c *Config) { c.Analysis.NumPeaks = -1 }, false},
		{"zero tempo window", func(c *Config) { c.Analysis.TempoMaxSeconds = 0 }, false},
		{"zero silence window", func(c *Config) { c.Analysis.SilenceMaxSeconds = 0 }, false},
		{"negative workers", func(c *Config) { c.Library.Workers = -2 }, false},
		{"cache without path", func(c *Config) { c.Cache.Path = "" }, false},
		{"disabled cache without path", func(c *Config) { c.Cache.Path = ""; c.Cache.Enabled = false }, true},
		{"bad output", func(c *Config) { c.OutputFormat = "xml" }, false},
		{"upper case output", func(c *Config) { c.OutputFormat = "JSON" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestWriteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", AppName+".yaml")
	require.NoError(t, WriteConfigFile(GetDefaultConfig(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "num_peaks: 128")
	assert.Contains(t, string(data), "output_format: table")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, 128, v.GetInt("analysis.num_peaks"))
	assert.True(t, v.GetBool("cache.enabled"))
}

func TestFastAnalysisConfig(t *testing.T) {
	fast := FastAnalysisConfig()
	assert.False(t, fast.DetectBPM)
	assert.Less(t, fast.NumPeaks, GetDefaultAnalysisConfig().NumPeaks)
	assert.Equal(t, GetDefaultAnalysisConfig().SilenceMaxSeconds, fast.SilenceMaxSeconds)
	assert.Equal(t, 30.0, fast.SilenceMaxSeconds)
}
