package client

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsUpToDate compares the summed local sizes against the manifest total.
// Individual files are not compared, so any local set with the same aggregate size passes.
func IsUpToDate(local Inventory, m *Manifest) bool {
	return local.Total() == m.TotalSize
}

// Orphans returns, sorted, every local path whose base name matches no manifest entry name.
func Orphans(local Inventory, m *Manifest) []string {
	names := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		names[f.Name] = struct{}{}
	}

	var orphans []string
	for path := range local {
		if _, ok := names[filepath.Base(path)]; ok {
			continue
		}
		orphans = append(orphans, path)
	}
	sort.Strings(orphans)
	return orphans
}

// Plan removes orphaned local entries from disk and returns them along with the manifest
// entries that have to be downloaded. Filesystem errors are returned as is.
func (c *Client) Plan(local Inventory, m *Manifest) ([]string, []RemoteFile, error) {
	log := c.log.With(slog.String("op", "Plan"))

	toDelete := Orphans(local, m)
	for _, path := range toDelete {
		log.Info("File is not valid in folder of game, deleting", slog.String("name", filepath.Base(path)))
		err := c.fs.RemoveAll(path)
		if err != nil {
			return nil, nil, fmt.Errorf("remove %s: %w", path, err)
		}
	}

	toFetch, err := c.stale(m)
	if err != nil {
		return nil, nil, err
	}
	return toDelete, toFetch, nil
}

// stale returns manifest entries that are missing under root or whose size differs.
func (c *Client) stale(m *Manifest) ([]RemoteFile, error) {
	var toFetch []RemoteFile
	for _, entry := range m.Files {
		if entry.Name == "" {
			continue
		}
		if strings.Contains(entry.Name, "..") {
			c.log.Warn("Skipping entry, has .. inside it", slog.String("name", entry.Name))
			continue
		}

		path := filepath.Join(c.root, entry.Name)
		fi, err := c.fs.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				toFetch = append(toFetch, entry)
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		size := fi.Size()
		if fi.IsDir() {
			size, err = dirSize(c.fs, path)
			if err != nil {
				return nil, fmt.Errorf("size %s: %w", path, err)
			}
		}
		if size != entry.Size {
			toFetch = append(toFetch, entry)
		}
	}
	return toFetch, nil
}
