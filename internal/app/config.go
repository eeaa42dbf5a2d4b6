package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/RyanBlaney/sample-analyzer/configs"
	"gopkg.in/yaml.v3"
)

// loadConfigFromFile reads a standalone config file over the defaults
func loadConfigFromFile(filePath string) (*configs.Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", filePath)
	}

	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		return loadConfigFromYAML(filePath)
	case ".json":
		return loadConfigFromJSON(filePath)
	default:
		// Try YAML first, then JSON
		if cfg, err := loadConfigFromYAML(filePath); err == nil {
			return cfg, nil
		}
		return loadConfigFromJSON(filePath)
	}
}

func loadConfigFromYAML(filePath string) (*configs.Config, error) {
	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, err
	}

	config := configs.GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return config, nil
}

func loadConfigFromJSON(filePath string) (*configs.Config, error) {
	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, err
	}

	config := configs.GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	return config, nil
}

func readConfigFile(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// mergeConfig applies command line overrides on top of the loaded config
func mergeConfig(config *configs.Config, ctx *Context) *configs.Config {
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if ctx.Verbose {
		config.Verbose = true
	}
	if ctx.Workers > 0 {
		config.Library.Workers = ctx.Workers
	}
	if config.Library.Workers == 0 {
		config.Library.Workers = runtime.NumCPU()
	}
	if ctx.NoCache {
		config.Cache.Enabled = false
	}
	if ctx.CachePath != "" {
		config.Cache.Path = ctx.CachePath
	}
	if ctx.Fast {
		config.Analysis = configs.FastAnalysisConfig()
	}
	if ctx.NumPeaks > 0 {
		config.Analysis.NumPeaks = ctx.NumPeaks
	}
	return config
}

// GenerateExampleConfig writes the default configuration to outputFile
func GenerateExampleConfig(outputFile string) error {
	return configs.WriteConfigFile(configs.GetDefaultConfig(), outputFile)
}

// ValidateConfigFile loads a config file and checks its values
func ValidateConfigFile(configFile string) (*configs.Config, error) {
	config, err := loadConfigFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}
