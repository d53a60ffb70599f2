package output

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/bench-runner/internal/model"
)

func TestJSONLinesSink_OneLinePerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl")
	s, err := NewJSONLinesSink(path)
	require.NoError(t, err)

	first := sampleRow(0, model.Success)
	first.Command = "benchmark_app -m a.xml > out.log 2>&1 && echo <done>"
	require.NoError(t, s.Write(first))
	require.NoError(t, s.Write(sampleRow(1, model.Failure)))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "> out.log 2>&1 && echo <done>")
	assert.NotContains(t, string(raw), `\u003e`)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var rows []model.ResultRow
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r model.ResultRow
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		rows = append(rows, r)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, rows, 2)
	assert.Equal(t, first.Command, rows[0].Command)
	assert.Equal(t, model.CauseUnknownFramework, rows[1].Cause)
	assert.Equal(t, 2, strings.Count(string(raw), "\n"))
}

func TestJSONLinesSink_TruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"stale\":true}\n"), 0o644))

	s, err := NewJSONLinesSink(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(sampleRow(0, model.Success)))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "stale")
}
