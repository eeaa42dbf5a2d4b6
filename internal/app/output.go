package app

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/RyanBlaney/sample-analyzer/pkg/audio/sample"
)

// NewFormatter returns the formatter for an output format name. Unknown
// names fall back to JSON.
func NewFormatter(format string) output.Formatter {
	switch strings.ToLower(format) {
	case "yaml":
		return &output.YAMLFormatter{}
	case "csv":
		return &output.CSVFormatter{}
	case "table":
		return &output.TableFormatter{}
	default:
		return &output.JSONFormatter{}
	}
}

// Write formats data with the configured formatter and writes it to the
// output file or stdout
func (app *App) Write(data any) error {
	return app.WriteTo(os.Stdout, data)
}

// WriteTo is Write with an explicit fallback writer for when no output file
// is configured
func (app *App) WriteTo(w io.Writer, data any) error {
	formatted, err := formatData(app.config.OutputFormat, data)
	if err != nil {
		return err
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formatted)
	}

	_, err = w.Write(formatted)
	return err
}

func formatData(format string, data any) ([]byte, error) {
	formatter := NewFormatter(format)
	formatted, err := formatter.Format(data, true)
	if err != nil {
		// NaN or Inf in a float field; scrub and retry once
		if strings.Contains(err.Error(), "unsupported value") {
			formatted, err = formatter.Format(sanitizeForJSON(data), true)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to format output data: %w", err)
		}
	}
	return formatted, nil
}

// writeToFile writes data to the specified output file
func (app *App) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})
	return nil
}

// AnalysisRows flattens records into one row per file for the table and CSV
// formatters
func AnalysisRows(analyses []*sample.Analysis) []map[string]any {
	rows := make([]map[string]any, 0, len(analyses))
	for _, a := range analyses {
		row := map[string]any{
			"file":     a.Filename,
			"format":   a.Format,
			"duration": roundTo(a.Duration.Seconds(), 2),
			"type":     string(a.Type),
			"bpm":      "",
			"key":      "",
			"genre":    "",
			"tags":     strings.Join(a.Tags, " "),
		}
		if a.BPM != nil {
			row["bpm"] = fmt.Sprintf("%d (%s)", *a.BPM, a.BPMSource)
		}
		if a.Key != nil {
			row["key"] = *a.Key
		}
		if a.Genre != nil {
			row["genre"] = *a.Genre
		}
		rows = append(rows, row)
	}
	return rows
}

func roundTo(f float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(f*pow) / pow
}

// sanitizeForJSON recursively replaces NaN and infinite floats with zero.
// Structs come back as maps keyed by their JSON names.
func sanitizeForJSON(data any) any {
	if data == nil {
		return nil
	}
	switch v := data.(type) {
	case time.Time, time.Duration:
		return v
	}
	return sanitizeValue(reflect.ValueOf(data))
}

func sanitizeValue(val reflect.Value) any {
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return sanitizeForJSON(val.Elem().Interface())

	case reflect.Float32, reflect.Float64:
		f := val.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			f = 0
		}
		if val.Kind() == reflect.Float32 {
			return float32(f)
		}
		return f

	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			if !field.CanInterface() {
				continue
			}
			name, skip := jsonFieldName(typ.Field(i))
			if skip {
				continue
			}
			result[name] = sanitizeForJSON(field.Interface())
		}
		return result

	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return nil
		}
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = sanitizeForJSON(val.Index(i).Interface())
		}
		return result

	case reflect.Map:
		result := make(map[string]any)
		for _, key := range val.MapKeys() {
			result[fmt.Sprintf("%v", key.Interface())] = sanitizeForJSON(val.MapIndex(key).Interface())
		}
		return result

	default:
		return val.Interface()
	}
}

func jsonFieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return field.Name, false
}
