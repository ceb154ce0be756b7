package sink

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wumpf/issue-explorer/internal/domain"
)

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestRecordSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.ndjson")

	s, err := NewRecordSink(path)
	require.NoError(t, err)

	s.SetTimeSeconds("time", 1000)
	s.Scalar("plot/open", 3, domain.ColorPlotOpen)
	s.SetTimeSeconds("time", 2000)
	s.SetTimeSequence("commit_index", 7)
	s.TextLog("commit/abc1234", "fix the fix", domain.ColorTodo, "info")
	require.NoError(t, s.Close())

	records := readRecords(t, path)
	require.Len(t, records, 2)

	scalar := records[0]
	assert.Equal(t, "scalar", scalar.Kind)
	assert.Equal(t, "plot/open", scalar.Entity)
	require.NotNil(t, scalar.Value)
	assert.Equal(t, float64(3), *scalar.Value)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, scalar.Color)
	// The cursor snapshot must not pick up later SetTime calls.
	assert.Equal(t, map[string]float64{"time": 1000}, scalar.Times)

	textLog := records[1]
	assert.Equal(t, "log", textLog.Kind)
	assert.Equal(t, "fix the fix", textLog.Text)
	assert.Equal(t, "info", textLog.Level)
	assert.Equal(t, map[string]float64{"time": 2000, "commit_index": 7}, textLog.Times)
}

func TestRecordSinkCreateFailure(t *testing.T) {
	_, err := NewRecordSink(filepath.Join(t.TempDir(), "no", "such", "dir", "stream.ndjson"))
	assert.Error(t, err)
}
