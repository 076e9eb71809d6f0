package client

import (
	"fmt"
	"io"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Report summarizes one update run.
type Report struct {
	StartedAt       time.Time    `yaml:"started_at"`
	Duration        string       `yaml:"duration"`
	TotalSize       int64        `yaml:"total_size"`
	Deleted         []string     `yaml:"deleted,omitempty"`
	Fetched         []FileResult `yaml:"fetched,omitempty"`
	Failed          []FileResult `yaml:"failed,omitempty"`
	DownloadedBytes int64        `yaml:"downloaded_bytes"`
	Downloaded      string       `yaml:"downloaded"`
}

func newReport(start time.Time, m *Manifest, deleted []string, results []FileResult, state TransferState) *Report {
	r := &Report{
		StartedAt:       start,
		Duration:        time.Since(start).Round(time.Millisecond).String(),
		TotalSize:       m.TotalSize,
		Deleted:         deleted,
		DownloadedBytes: state.Downloaded,
		Downloaded:      datasize.ByteSize(state.Downloaded).HR(),
	}
	for _, res := range results {
		if res.Error != "" {
			r.Failed = append(r.Failed, res)
			continue
		}
		r.Fetched = append(r.Fetched, res)
	}
	return r
}

// Summary is a one line description of the run.
func (r *Report) Summary() string {
	if r.DownloadedBytes == 0 && len(r.Failed) == 0 {
		return fmt.Sprintf("Finished patch in %s", r.Duration)
	}
	if len(r.Failed) > 0 {
		return fmt.Sprintf("Finished patch of %s in %s, %d file(s) failed", r.Downloaded, r.Duration, len(r.Failed))
	}
	return fmt.Sprintf("Finished patch of %s in %s", r.Downloaded, r.Duration)
}

// Encode writes the report as YAML.
func (r *Report) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// Save writes the report to path on fs.
func (r *Report) Save(fs afero.Fs, path string) error {
	w, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer w.Close()

	return r.Encode(w)
}
