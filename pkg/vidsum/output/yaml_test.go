package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAMLFormatter_Format_BasicOutput(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Rows: []Row{
			{
				Path:      "/media/library/show/episode.mkv",
				Size:      1073741824,
				SizeHuman: "1.0 GiB",
				Hash:      "xxh64:0123456789abcdef:fedcba9876543210:1073741824",
			},
		},
		Source:    "/media/library",
		TotalRows: 1,
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	var decoded struct {
		Rows []struct {
			Path string `yaml:"path"`
			Size int64  `yaml:"size"`
			Hash string `yaml:"hash"`
		} `yaml:"rows"`
		Meta struct {
			Source    string `yaml:"source"`
			TotalRows int    `yaml:"total_rows"`
			TotalSize int64  `yaml:"total_size"`
		} `yaml:"meta"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, "/media/library/show/episode.mkv", decoded.Rows[0].Path)
	assert.Equal(t, int64(1073741824), decoded.Rows[0].Size)
	assert.Equal(t, "xxh64:0123456789abcdef:fedcba9876543210:1073741824", decoded.Rows[0].Hash)
	assert.Equal(t, "/media/library", decoded.Meta.Source)
	assert.Equal(t, 1, decoded.Meta.TotalRows)
	assert.Equal(t, int64(1073741824), decoded.Meta.TotalSize)
}

func TestYAMLFormatter_Format_WithSummary(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Summary: &Summary{
			JobID:       "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
			Mode:        "prune",
			Roots:       []string{"/media/library"},
			Found:       50,
			Removed:     5,
			Duration:    30 * time.Second,
			Incremental: true,
		},
		Source: "/media/library",
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	var decoded struct {
		Summary struct {
			JobID   string `yaml:"job_id"`
			Mode    string `yaml:"mode"`
			Removed int    `yaml:"removed"`
		} `yaml:"summary"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", decoded.Summary.JobID)
	assert.Equal(t, "prune", decoded.Summary.Mode)
	assert.Equal(t, 5, decoded.Summary.Removed)
}

func TestYAMLFormatter_Format_EmptyResult(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "meta:")
}
