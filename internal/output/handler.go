/*
PURPOSE:
  Persists one result row per test, immediately after the test finishes, to
  every configured sink (CSV table, JSON Lines, SQLite).

REQUIREMENTS:
  User-specified:
  - Table is created once before the first test.
  - Rows are appended, never rewritten, so partial results survive a crash.

  Implementation-discovered:
  - A failing sink must not stop the other sinks from receiving the row.
  - Rows are kept in memory for the end-of-run summary.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (AddRow), internal/cli (CreateTable, Close, Summary)
  - Consumes: internal/model.ResultRow

ERROR HANDLING:
  - CreateTable returns the first sink that could not be opened and closes the others.
  - AddRow joins the errors of all failing sinks.

IMPLEMENTATION RULES:
  - Thread-safe: a parallel run calls AddRow from several workers.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go
  - internal/output/sqlite.go
*/

package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/daryltucker/bench-runner/internal/model"
)

// Sink receives result rows.
type Sink interface {
	Write(row model.ResultRow) error
	Close() error
}

// Options selects the sinks of a Handler. Empty paths disable a sink.
type Options struct {
	CSVPath   string
	Delimiter rune
	JSONPath  string
	DBPath    string
}

// Handler fans result rows out to sinks.
type Handler struct {
	opts  Options
	mu    sync.Mutex
	sinks []Sink
	rows  []model.ResultRow
	open  bool
}

// NewHandler creates a Handler. No file is touched until CreateTable.
func NewHandler(opts Options) *Handler {
	return &Handler{opts: opts}
}

// CreateTable opens every configured sink and writes table headers.
func (h *Handler) CreateTable() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open {
		return fmt.Errorf("result table already created")
	}

	var sinks []Sink
	fail := func(err error) error {
		for _, s := range sinks {
			s.Close()
		}
		return err
	}

	if h.opts.CSVPath != "" {
		w, err := NewCSVWriter(h.opts.CSVPath, h.opts.Delimiter)
		if err != nil {
			return fail(fmt.Errorf("failed to init CSV writer at %s: %w", h.opts.CSVPath, err))
		}
		sinks = append(sinks, w)
	}
	if h.opts.JSONPath != "" {
		w, err := NewJSONLinesSink(h.opts.JSONPath)
		if err != nil {
			return fail(fmt.Errorf("failed to init JSON writer at %s: %w", h.opts.JSONPath, err))
		}
		sinks = append(sinks, w)
	}
	if h.opts.DBPath != "" {
		s, err := NewSQLiteStore(h.opts.DBPath)
		if err != nil {
			return fail(fmt.Errorf("failed to init SQLite store at %s: %w", h.opts.DBPath, err))
		}
		sinks = append(sinks, s)
	}

	h.sinks = sinks
	h.open = true
	return nil
}

// AddRow persists row to every sink.
func (h *Handler) AddRow(row model.ResultRow) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.open {
		return fmt.Errorf("result table not created")
	}

	h.rows = append(h.rows, row)

	var errs []error
	for _, s := range h.sinks {
		if err := s.Write(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rows returns a copy of the rows added so far.
func (h *Handler) Rows() []model.ResultRow {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.ResultRow(nil), h.rows...)
}

// Close closes all sinks.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, s := range h.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.sinks = nil
	return errors.Join(errs...)
}
