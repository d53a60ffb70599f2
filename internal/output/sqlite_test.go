package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/bench-runner/internal/model"
)

func TestSQLiteStore_KeepsEarlierRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(sampleRow(0, model.Success)))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	second := sampleRow(0, model.Failure)
	second.RunID = "run-2"
	require.NoError(t, store.Write(second))

	assert.Equal(t, 1, countRun(t, store, "run-1"))
	assert.Equal(t, 1, countRun(t, store, "run-2"))

	var cause string
	require.NoError(t, store.db.QueryRow(`SELECT cause FROM results WHERE run_id = ?`, "run-2").Scan(&cause))
	assert.Equal(t, "unknown_framework", cause)
}
