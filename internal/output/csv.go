/*
PURPOSE:
  Writes result rows to a delimited table file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - One header plus one row per test.
  - Configurable delimiter (default ';').

  Implementation-discovered:
  - A new run overwrites an existing file.

ARCHITECTURE INTEGRATION:
  - Called by: internal/output.Handler
  - Consumes: internal/model.ResultRow

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex since parallel runs write from several workers.

USAGE:
  w, err := output.NewCSVWriter("results.csv", ';')
  w.Write(row)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update csvHeader and record conversion together.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when ResultRow changes.
*/

package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/bench-runner/internal/model"
)

var csvHeader = []string{
	"run_id", "index", "status", "cause", "error",
	"framework", "task", "model", "source_framework", "precision",
	"dataset", "device", "batch_size", "iterations", "mode", "framework_parameters",
	"executor", "infrastructure", "exit_code", "duration_s",
	"average_time_s", "latency_s", "fps", "command", "started_at",
}

// CSVWriter handles writing result rows to a delimited file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter and writes the header.
// It overwrites the file if it exists. A zero delimiter means ';'.
func NewCSVWriter(path string, delimiter rune) (*CSVWriter, error) {
	if delimiter == 0 {
		delimiter = ';'
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	w.Comma = delimiter

	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single row to the file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.ResultRow) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if err := cw.writer.Write(csvRecord(r)); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}

func csvRecord(r model.ResultRow) []string {
	extra := ""
	if len(r.Test.Extra) > 0 {
		b, _ := json.Marshal(r.Test.Extra)
		extra = string(b)
	}

	return []string{
		r.RunID,
		strconv.Itoa(r.Index),
		r.Status.String(),
		string(r.Cause),
		r.Error,
		r.Test.Framework,
		r.Test.Model.Task,
		r.Test.Model.Name,
		r.Test.Model.SourceFramework,
		r.Test.Model.Precision,
		r.Test.Dataset.Name,
		r.Test.Parameters.Device,
		strconv.Itoa(r.Test.Parameters.BatchSize),
		strconv.Itoa(r.Test.Parameters.Iterations),
		r.Test.Parameters.Mode,
		extra,
		r.Executor,
		r.Infrastructure,
		strconv.Itoa(r.ExitCode),
		fmt.Sprintf("%.4f", r.Duration.Seconds()),
		optionalFloat(r.Metrics.AverageTime, 6),
		optionalFloat(r.Metrics.Latency, 6),
		optionalFloat(r.Metrics.FPS, 3),
		r.Command,
		r.StartedAt.Format(time.RFC3339),
	}
}

// optionalFloat leaves unreported metrics empty instead of writing 0.
func optionalFloat(v float64, prec int) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
