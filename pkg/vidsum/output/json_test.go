package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Format_BasicOutput(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Rows: []Row{
			{
				Path:      "/media/library/show/episode.mkv",
				Name:      "episode.mkv",
				Size:      1073741824,
				SizeHuman: "1.0 GiB",
				Hash:      "xxh64:0123456789abcdef:fedcba9876543210:1073741824",
				Status:    "ok",
			},
		},
		Source:    "/media/library",
		TotalRows: 1,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	rows, ok := decoded["rows"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 1)

	row := rows[0].(map[string]interface{})
	assert.Equal(t, "/media/library/show/episode.mkv", row["path"])
	assert.Equal(t, "xxh64:0123456789abcdef:fedcba9876543210:1073741824", row["hash"])
	assert.Equal(t, float64(1073741824), row["size"])

	meta := decoded["meta"].(map[string]interface{})
	assert.Equal(t, "/media/library", meta["source"])
	assert.Equal(t, float64(1), meta["total_rows"])
	assert.Equal(t, float64(1073741824), meta["total_size"])

	// No scan summary attached
	_, hasSummary := decoded["summary"]
	assert.False(t, hasSummary)
}

func TestJSONFormatter_Format_WithSummary(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Summary: &Summary{
			JobID:       "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
			Mode:        "full",
			Roots:       []string{"/media/library"},
			Found:       100,
			New:         100,
			Duration:    time.Minute,
			Incremental: false,
		},
		Source: "/media/library",
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	summary := decoded["summary"].(map[string]interface{})
	assert.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", summary["job_id"])
	assert.Equal(t, "full", summary["mode"])
	assert.Equal(t, float64(100), summary["found"])
	assert.Equal(t, "1m0s", summary["duration"])
	assert.Equal(t, false, summary["incremental"])
}

func TestJSONFormatter_Format_Indented(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{})
	require.NoError(t, err)

	// Indented output spans multiple lines
	assert.Greater(t, strings.Count(buf.String(), "\n"), 1)
}

func TestJSONLFormatter_Format_OneObjectPerLine(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Rows: []Row{
			{Path: "/a.mkv", Size: 1000, SizeHuman: "1000 B"},
			{Path: "/b.mp4", Size: 2000, SizeHuman: "2.0 KiB"},
			{Path: "/c.avi", Size: 3000, SizeHuman: "2.9 KiB"},
		},
		TotalRows: 3,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	for i, line := range lines {
		var row map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &row), "line %d should be valid JSON", i)
		assert.NotEmpty(t, row["path"])
	}
}

func TestJSONLFormatter_Format_EmptyResult(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestFormatDurationString(t *testing.T) {
	assert.Equal(t, "", formatDurationString(0))
	assert.Equal(t, "1m0s", formatDurationString(time.Minute))
	assert.Equal(t, "1.5s", formatDurationString(1500*time.Millisecond))
}
