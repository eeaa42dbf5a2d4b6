package library

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/RyanBlaney/sample-analyzer/pkg/audio/pcm"
	"gonum.org/v1/gonum/stat"
)

// TimingStats summarizes per-file analysis times in milliseconds
type TimingStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// ScanStats summarizes a finished scan
type ScanStats struct {
	Files             int            `json:"files" yaml:"files"`
	Analyzed          int            `json:"analyzed" yaml:"analyzed"`
	CacheHits         int            `json:"cache_hits" yaml:"cache_hits"`
	Failed            int            `json:"failed" yaml:"failed"`
	Elapsed           time.Duration  `json:"elapsed" yaml:"elapsed"`
	AnalysisTime      *TimingStats   `json:"analysis_time_ms" yaml:"analysis_time_ms"`
	ByType            map[string]int `json:"by_type" yaml:"by_type"`
	ByBPMSource       map[string]int `json:"by_bpm_source" yaml:"by_bpm_source"`
	ErrorDistribution map[string]int `json:"error_distribution,omitempty" yaml:"error_distribution,omitempty"`
}

// calculateTimingStats calculates statistical measures for a set of durations
func calculateTimingStats(durations []time.Duration) *TimingStats {
	if len(durations) == 0 {
		return &TimingStats{}
	}

	data := make([]float64, len(durations))
	for i, d := range durations {
		data[i] = float64(d) / float64(time.Millisecond)
	}
	sort.Float64s(data)

	mean, std := stat.MeanStdDev(data, nil)
	stats := &TimingStats{
		Count:  len(data),
		Min:    data[0],
		Max:    data[len(data)-1],
		Mean:   mean,
		Median: stat.Quantile(0.5, stat.LinInterp, data, nil),
		P95:    stat.Quantile(0.95, stat.LinInterp, data, nil),
		StdDev: std,
	}
	return sanitizeStats(stats)
}

// sanitizeStats replaces NaN and infinite values so the stats serialize
func sanitizeStats(stats *TimingStats) *TimingStats {
	for _, v := range []*float64{&stats.Mean, &stats.Median, &stats.P95, &stats.Min, &stats.Max, &stats.StdDev} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}

// categorizeError buckets a per-file failure for the scan summary
func categorizeError(err error) string {
	if err == nil {
		return "none"
	}

	var decodeErr *pcm.DecodeError
	if errors.As(err, &decodeErr) {
		return strings.ToLower(decodeErr.Code)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "other"
}
