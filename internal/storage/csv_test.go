package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transportlab/transport-data-collector/internal/crawler"
	"github.com/transportlab/transport-data-collector/internal/validator"
)

func sampleRecords() []validator.ValidatedRecord {
	return []validator.ValidatedRecord{
		{
			ExtractedRecord: crawler.ExtractedRecord{
				Title:      "Rail Electrification Study",
				Content:    "Electrifying the northern corridor would cut emissions, the study finds.",
				Date:       "2023-03-05",
				SourceURL:  "https://example.org/research/rail",
				ScrapeDate: "2023-06-14",
				Category:   "infrastructure",
				Priority:   1,
			},
			DedupKey: "abc123",
		},
		{
			ExtractedRecord: crawler.ExtractedRecord{
				Title:      "Title, with commas \"and quotes\"",
				Content:    "Body text\nwith a newline.",
				Date:       "2023-04-01",
				SourceURL:  "https://example.org/research/odd",
				ScrapeDate: "2023-06-14",
				Category:   "policy",
				Priority:   2,
			},
			DedupKey: "def456",
		},
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, csvHeader, rows[0])
	require.Equal(t, []string{
		"Rail Electrification Study",
		"Electrifying the northern corridor would cut emissions, the study finds.",
		"2023-03-05",
		"https://example.org/research/rail",
		"2023-06-14",
		"infrastructure",
		"1",
	}, rows[1])
	// Commas, quotes, and newlines must survive the round trip.
	require.Equal(t, "Title, with commas \"and quotes\"", rows[2][0])
	require.Equal(t, "Body text\nwith a newline.", rows[2][1])
}

func TestWriteTable_EmptyRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "an empty table still carries the header")
}

func TestCSVSink_Write(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	sink := NewCSVSink(dir, "transport_data", zap.NewNop())

	path, err := sink.Write(sampleRecords())
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	require.Regexp(t, `^transport_data_\d{8}_\d{6}\.csv$`, filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestCSVSink_DefaultPrefix(t *testing.T) {
	t.Parallel()

	sink := NewCSVSink(t.TempDir(), "", zap.NewNop())
	path, err := sink.Write(sampleRecords())
	require.NoError(t, err)
	require.Regexp(t, `^transport_data_`, filepath.Base(path))
}
