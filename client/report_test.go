package client

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReport(t *testing.T) {
	start := time.Now().Add(-2 * time.Second)
	results := []FileResult{
		{Name: "a.pak", Size: 2048},
		{Name: "b.pak", Size: 10, Error: "download responded 500"},
	}
	r := newReport(start, &Manifest{TotalSize: 4096}, []string{"/game/old.pak"}, results, TransferState{Downloaded: 2048, Total: 2058})

	require.Len(t, r.Fetched, 1)
	require.Len(t, r.Failed, 1)
	assert.Equal(t, "a.pak", r.Fetched[0].Name)
	assert.Equal(t, "b.pak", r.Failed[0].Name)
	assert.Equal(t, "2.0 KB", r.Downloaded)
	assert.Contains(t, r.Summary(), "1 file(s) failed")

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))

	decoded := map[string]any{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 4096, decoded["total_size"])
	assert.Equal(t, []any{"/game/old.pak"}, decoded["deleted"])
	assert.Contains(t, decoded, "failed")
}

func TestReportSummaryNothingDownloaded(t *testing.T) {
	r := newReport(time.Now(), &Manifest{}, nil, nil, TransferState{})
	assert.Contains(t, r.Summary(), "Finished patch in")
}

func TestReportSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := newReport(time.Now(), &Manifest{TotalSize: 1}, nil, []FileResult{{Name: "a", Size: 1}}, TransferState{Downloaded: 1, Total: 1})

	require.NoError(t, r.Save(fs, "/launchdemo-report.yml"))

	data, err := afero.ReadFile(fs, "/launchdemo-report.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "fetched:")
	assert.Contains(t, string(data), "name: a")
}
