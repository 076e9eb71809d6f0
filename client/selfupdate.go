package client

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fynelabs/selfupdate"
)

const (
	launcherHashPath = "/launcher-hash.txt"
	hashNotFound     = "Not Found"
)

// SelfUpdate replaces the running launcher when the server publishes a different build.
// The new binary is used on next start.
func (c *Client) SelfUpdate(ctx context.Context) error {
	exeName, err := os.Executable()
	if err != nil {
		return fmt.Errorf("executable: %w", err)
	}
	return c.selfUpdate(ctx, exeName)
}

func (c *Client) selfUpdate(ctx context.Context, exeName string) error {
	log := c.log.With(slog.String("op", "SelfUpdate"))

	oldPath := filepath.Join(filepath.Dir(exeName), "."+filepath.Base(exeName)+".old")
	err := os.Remove(oldPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Failed to remove old launcher", slog.String("path", oldPath), slog.Any("error", err))
		}
	} else {
		log.Info("Removed old launcher", slog.String("path", oldPath))
	}

	myHash, err := md5Checksum(exeName)
	if err != nil {
		return fmt.Errorf("checksum: %w", err)
	}

	url := c.baseURL + launcherHashPath
	log.Info("Checking for self update", slog.String("url", url))
	data, err := c.getBody(ctx, url)
	if err != nil {
		return err
	}

	remoteHash := strings.TrimSpace(string(data))
	if remoteHash == hashNotFound || remoteHash == "" {
		log.Info("Remote site down, ignoring self update")
		return nil
	}
	if strings.EqualFold(myHash, remoteHash) {
		log.Info("Self update not needed")
		return nil
	}

	url = c.baseURL + "/" + filepath.Base(exeName)
	log.Info("Updating launcher", slog.String("local", myHash), slog.String("remote", remoteHash), slog.String("url", url))
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

	log.Info("Applying update (will be used next launch)")
	err = selfupdate.Apply(resp.Body, selfupdate.Options{TargetPath: exeName})
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	return nil
}

func md5Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	_, err = io.Copy(h, f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
