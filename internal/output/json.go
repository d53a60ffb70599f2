/*
PURPOSE:
  Appends every finished test as one JSON object per line, so tools such as jq
  can follow a run while it is still in progress.

REQUIREMENTS:
  User-specified:
  - Same fields as the CSV table, nested the way model.ResultRow nests them.

  Implementation-discovered:
  - Commands carry shell operators ('<', '>', '&'); these are written verbatim
    instead of as \u003c style escapes.
  - A new run truncates the file, matching the CSV table.

ARCHITECTURE INTEGRATION:
  - Called by: internal/output.Handler
  - Consumes: internal/model.ResultRow

ERROR HANDLING:
  - Open and encode errors are returned unchanged; the Handler adds the path.

USAGE:
  s, err := output.NewJSONLinesSink("results.jsonl")
  s.Write(row)
  s.Close()
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/daryltucker/bench-runner/internal/model"
)

// JSONLinesSink is a Sink writing one JSON document per row.
type JSONLinesSink struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

func NewJSONLinesSink(path string) (*JSONLinesSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONLinesSink{f: f, enc: enc}, nil
}

// Write encodes r followed by a newline. Encoder writes go straight to the
// file, so a row is on disk once Write returns.
func (s *JSONLinesSink) Write(r model.ResultRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(r)
}

func (s *JSONLinesSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
