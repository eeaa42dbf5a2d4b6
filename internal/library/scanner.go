package library

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
	"github.com/sourcegraph/conc/pool"
)

// FileAnalyzer produces the analysis record for one file below root.
// Options identifies the settings its records are cached under.
// *sample.Analyzer implements it.
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, root, path string) (*sample.Analysis, error)
	Options() sample.Options
}

// FileError records a file that could not be analyzed
type FileError struct {
	Path     string `json:"path" yaml:"path"`
	Category string `json:"category" yaml:"category"`
	Err      error  `json:"-" yaml:"-"`
	Message  string `json:"error" yaml:"error"`
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Message
}

func (e FileError) Unwrap() error {
	return e.Err
}

// ScanResult is the outcome of a batch. Analyses keep the input file order
// with failed files left out.
type ScanResult struct {
	Root      string             `json:"root" yaml:"root"`
	Analyses  []*sample.Analysis `json:"analyses" yaml:"analyses"`
	Errors    []FileError        `json:"errors,omitempty" yaml:"errors,omitempty"`
	CacheHits int                `json:"cache_hits" yaml:"cache_hits"`
	Stats     *ScanStats         `json:"stats" yaml:"stats"`
}

// Progress is reported once per finished file
type Progress struct {
	Done     int
	Total    int
	Path     string
	CacheHit bool
	Err      error
}

// ProgressFunc receives scan progress. Calls are serialized.
type ProgressFunc func(Progress)

// Scanner analyzes batches of files on a bounded worker pool
type Scanner struct {
	analyzer FileAnalyzer
	cache    *Cache
	workers  int
	logger   logging.Logger
}

// NewScanner creates a scanner. cache may be nil to always analyze; workers
// below 1 means one worker per CPU.
func NewScanner(analyzer FileAnalyzer, cache *Cache, workers int) *Scanner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		analyzer: analyzer,
		cache:    cache,
		workers:  workers,
		logger: logging.WithFields(logging.Fields{
			"component": "library_scanner",
		}),
	}
}

// Workers returns the pool size
func (s *Scanner) Workers() int {
	return s.workers
}

type fileOutcome struct {
	analysis *sample.Analysis
	cacheHit bool
	elapsed  time.Duration
	err      error
}

// Scan analyzes files found below root. Per-file failures are collected in
// the result and do not stop the batch. When ctx is canceled the files
// finished so far are returned together with the context error.
func (s *Scanner) Scan(ctx context.Context, root string, files []string, progress ProgressFunc) (*ScanResult, error) {
	start := time.Now()
	logger := s.logger.WithFields(logging.Fields{
		"function": "Scan",
		"root":     root,
	})

	logger.Debug("Starting scan", logging.Fields{
		"files":   len(files),
		"workers": s.workers,
		"cached":  s.cache != nil,
	})

	outcomes := make([]*fileOutcome, len(files))
	var (
		mu   sync.Mutex
		done int
	)

	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcome := s.scanFile(ctx, root, path)

			mu.Lock()
			outcomes[i] = outcome
			done++
			if progress != nil {
				progress(Progress{
					Done:     done,
					Total:    len(files),
					Path:     path,
					CacheHit: outcome.cacheHit,
					Err:      outcome.err,
				})
			}
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait()

	result := s.collect(root, files, outcomes, time.Since(start))

	logger.Debug("Scan finished", logging.Fields{
		"analyzed":   result.Stats.Analyzed,
		"cache_hits": result.CacheHits,
		"failed":     result.Stats.Failed,
		"elapsed_s":  result.Stats.Elapsed.Seconds(),
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Scanner) scanFile(ctx context.Context, root, path string) *fileOutcome {
	fingerprint := s.analyzer.Options().Fingerprint()
	if s.cache != nil {
		cached, ok, err := s.cache.Get(path, fingerprint)
		if err != nil {
			s.logger.Warn("Cache lookup failed", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
		if ok {
			return &fileOutcome{analysis: cached, cacheHit: true}
		}
	}

	start := time.Now()
	analysis, err := s.analyzer.AnalyzeFile(ctx, root, path)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warn("Skipping file that could not be analyzed", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return &fileOutcome{err: err, elapsed: elapsed}
	}

	if s.cache != nil {
		if err := s.cache.Put(analysis, fingerprint); err != nil {
			s.logger.Warn("Failed to cache analysis", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
	return &fileOutcome{analysis: analysis, elapsed: elapsed}
}

func (s *Scanner) collect(root string, files []string, outcomes []*fileOutcome, elapsed time.Duration) *ScanResult {
	result := &ScanResult{
		Root:     root,
		Analyses: make([]*sample.Analysis, 0, len(files)),
	}
	stats := &ScanStats{
		Files:       len(files),
		Elapsed:     elapsed,
		ByType:      map[string]int{},
		ByBPMSource: map[string]int{},
	}
	var timings []time.Duration

	for i, outcome := range outcomes {
		if outcome == nil {
			// never started because the scan was canceled
			continue
		}
		if outcome.err != nil {
			category := categorizeError(outcome.err)
			result.Errors = append(result.Errors, FileError{
				Path:     files[i],
				Category: category,
				Err:      outcome.err,
				Message:  outcome.err.Error(),
			})
			if stats.ErrorDistribution == nil {
				stats.ErrorDistribution = map[string]int{}
			}
			stats.ErrorDistribution[category]++
			continue
		}

		result.Analyses = append(result.Analyses, outcome.analysis)
		if outcome.cacheHit {
			result.CacheHits++
		} else {
			stats.Analyzed++
			timings = append(timings, outcome.elapsed)
		}
		if outcome.analysis.Type != "" {
			stats.ByType[string(outcome.analysis.Type)]++
		}
		stats.ByBPMSource[string(outcome.analysis.BPMSource)]++
	}

	stats.CacheHits = result.CacheHits
	stats.Failed = len(result.Errors)
	stats.AnalysisTime = calculateTimingStats(timings)
	result.Stats = stats
	return result
}
