package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/c2h5oh/datasize"
)

const chunkSize = 8 * 1024

// ProgressFunc receives the share of the current update run downloaded so far, in percent.
// It is called synchronously from the download loop once per chunk.
type ProgressFunc func(percent float64)

// TransferState holds the byte counters of one update run.
type TransferState struct {
	Downloaded int64
	Total      int64
}

// Percent is not clamped; a zero Total yields NaN or +Inf.
func (s TransferState) Percent() float64 {
	return float64(s.Downloaded) / float64(s.Total) * 100
}

// FileResult is the outcome of one download.
type FileResult struct {
	Name  string `yaml:"name"`
	Size  int64  `yaml:"size"`
	Error string `yaml:"error,omitempty"`
}

// Transfer returns a snapshot of the current run's counters.
func (c *Client) Transfer() TransferState {
	return c.state
}

// Fetch downloads files one after another into the install root.
// A failed file is logged and skipped; it is never retried.
func (c *Client) Fetch(ctx context.Context, files []RemoteFile) []FileResult {
	total := int64(0)
	for _, f := range files {
		total += f.Size
	}
	c.state = TransferState{Total: total}
	c.log.Info("Total patch size", slog.String("size", datasize.ByteSize(total).HR()), slog.Int("files", len(files)))

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		res := FileResult{Name: f.Name, Size: f.Size}
		err := c.downloadFile(ctx, f)
		if err != nil {
			c.log.Error("Failed to fetch file", slog.String("name", f.Name), slog.Any("error", err))
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func (c *Client) downloadFile(ctx context.Context, entry RemoteFile) error {
	if entry.Name == "" || strings.Contains(entry.Name, "..") {
		return fmt.Errorf("%q: %w", entry.Name, ErrInvalidName)
	}
	dst := filepath.Join(c.root, entry.Name)
	url := entry.DownloadURL
	log := c.log.With(slog.String("name", entry.Name))
	log.Info("Download", slog.String("url", url), slog.String("size", datasize.ByteSize(entry.Size).HR()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request %s: %w", url, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("download %s responded %d: %w", url, resp.StatusCode, ErrBadStatus)
	}

	if strings.ContainsAny(entry.Name, `/\`) {
		err = c.fs.MkdirAll(filepath.Dir(dst), os.ModePerm)
		if err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
		}
	}
	w, err := c.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer w.Close()

	written := int64(0)
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if c.limiter != nil {
				err = c.limiter.WaitN(ctx, n)
				if err != nil {
					return fmt.Errorf("rate limit: %w", err)
				}
			}
			_, err = w.Write(buf[:n])
			if err != nil {
				return fmt.Errorf("write %s: %w", dst, err)
			}
			written += int64(n)
			c.state.Downloaded += int64(n)
			if c.progress != nil {
				c.progress(c.state.Percent())
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read %s: %w", url, rerr)
		}
	}

	log.Info("Download finished", slog.String("written", datasize.ByteSize(written).HR()))
	return nil
}
