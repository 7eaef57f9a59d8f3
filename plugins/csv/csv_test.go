package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New(plugin.OutputConfig{Type: "csv"})
	require.Error(t, err)
	require.Equal(t, plugin.KindConfig, plugin.KindOf(err))

	out, err := plugin.NewOutput(plugin.OutputConfig{Type: "csv", Path: filepath.Join(t.TempDir(), "x.csv")})
	require.NoError(t, err)
	require.Equal(t, "csv", out.Name())
}

func TestOutput_RowsAndHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timings.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	out, err := New(plugin.OutputConfig{Type: "csv", Path: path})
	require.NoError(t, err)
	require.NoError(t, out.Start())

	ts := time.Date(2024, 3, 1, 12, 30, 45, 0, time.Local)
	samples := []plugin.Sample{
		{Backend: "oracle", Timestamp: ts, Duration: 1.25, Metadata: plugin.Metadata{SID: "42", Instance: "1"}},
		{Backend: "postgresql", Timestamp: ts.Add(time.Second), Duration: 0.731},
		{Backend: "url", Timestamp: ts.Add(2 * time.Second), Duration: 48.0},
	}
	for _, s := range samples {
		require.NoError(t, out.Send(s))
	}

	// Rows are flushed per sample, before Stop.
	records := readCSV(t, path)
	require.Len(t, records, len(samples)+1)
	require.NoError(t, out.Stop())

	records = readCSV(t, path)
	require.Len(t, records, len(samples)+1)
	require.Equal(t, Header, records[0])
	require.Equal(t, []string{"2024-03-01 12:30:45", "1.25", "42", "1"}, records[1])
	require.Equal(t, []string{"2024-03-01 12:30:46", "0.731", "", ""}, records[2])

	for i, rec := range records[1:] {
		require.Len(t, rec, 4)
		d, err := strconv.ParseFloat(rec[1], 64)
		require.NoError(t, err)
		require.Equal(t, samples[i].Duration, d)
	}
}

func TestOutput_SendBeforeStart(t *testing.T) {
	out, err := New(plugin.OutputConfig{Type: "csv", Path: filepath.Join(t.TempDir(), "x.csv")})
	require.NoError(t, err)
	require.Error(t, out.Send(plugin.Sample{}))
	require.NoError(t, out.Stop())
}

func TestOutput_StartUnwritable(t *testing.T) {
	out, err := New(plugin.OutputConfig{Type: "csv", Path: filepath.Join(t.TempDir(), "missing", "x.csv")})
	require.NoError(t, err)
	require.Error(t, out.Start())
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}
