package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sample-analyzer/configs"
	"github.com/RyanBlaney/sample-analyzer/internal/library"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/pcm"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
)

// Context holds the command line settings for one invocation
type Context struct {
	// CLI arguments
	OutputFile   string
	OutputFormat string
	Verbose      bool
	Quiet        bool
	Workers      int
	NumPeaks     int
	NoCache      bool
	CachePath    string
	Fast         bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// App wires configuration into the analyzer, cache and library services
type App struct {
	ctx      *Context
	config   *configs.Config
	logger   logging.Logger
	analyzer *sample.Analyzer
	cache    *library.Cache
}

// NewApp creates the application for one command run
func NewApp(ctx *Context) (*App, error) {
	// Load configuration
	baseConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config := mergeConfig(baseConfig, ctx)
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ctx.Config = config

	// Set up logging
	logger := setupLogging(ctx, config)
	ctx.Logger = logger

	logger.Debug("Sample analyzer initialized", logging.Fields{
		"output_format": config.OutputFormat,
		"workers":       config.Library.Workers,
		"cache_enabled": config.Cache.Enabled,
		"cache_path":    config.Cache.Path,
		"num_peaks":     config.Analysis.NumPeaks,
	})

	return &App{
		ctx:      ctx,
		config:   config,
		logger:   logger,
		analyzer: sample.NewAnalyzer(pcm.NewFactory(), config.AnalysisOptions()),
	}, nil
}

// Config returns the effective configuration
func (app *App) Config() *configs.Config {
	return app.config
}

// Logger returns the application logger
func (app *App) Logger() logging.Logger {
	return app.logger
}

// Analyzer returns the file analyzer
func (app *App) Analyzer() *sample.Analyzer {
	return app.analyzer
}

// Cache opens the analysis cache on first use. It returns nil when caching
// is disabled.
func (app *App) Cache() (*library.Cache, error) {
	if !app.config.Cache.Enabled {
		return nil, nil
	}
	if app.cache != nil {
		return app.cache, nil
	}

	cache, err := library.OpenCache(app.config.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", app.config.Cache.Path, err)
	}
	app.cache = cache
	return cache, nil
}

// Scanner builds a batch scanner over the analyzer and cache
func (app *App) Scanner(cache *library.Cache) *library.Scanner {
	return library.NewScanner(app.analyzer, cache, app.config.Library.Workers)
}

// Watcher builds a folder watcher over the analyzer and cache
func (app *App) Watcher(cache *library.Cache) *library.Watcher {
	return library.NewWatcher(app.analyzer, cache, app.config.Library.Extensions, app.config.Watch.SettleDelay)
}

// CollectFiles lists the audio files below root using the library settings
func (app *App) CollectFiles(root string) ([]string, error) {
	return library.CollectAudioFiles(root, app.config.Library.Extensions, app.config.Library.FollowSymlinks)
}

// Close releases the cache if it was opened
func (app *App) Close() error {
	if app.cache == nil {
		return nil
	}
	err := app.cache.Close()
	app.cache = nil
	return err
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context, config *configs.Config) logging.Logger {
	level := strings.ToLower(config.LogLevel)
	switch {
	case ctx.Verbose || config.Verbose || level == "debug":
		logging.SetLevel(logging.DebugLevel)
	case ctx.Quiet || level == "error":
		logging.SetLevel(logging.ErrorLevel)
	case level == "warn":
		logging.SetLevel(logging.WarnLevel)
	default:
		logging.SetLevel(logging.InfoLevel)
	}

	return logging.WithFields(logging.Fields{
		"component": "app",
		"pid":       os.Getpid(),
	})
}
