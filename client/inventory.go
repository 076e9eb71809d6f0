package client

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Inventory maps every file and directory directly under the install root to its size.
// Directories carry the recursive size of everything beneath them and are never
// broken down into their files.
type Inventory map[string]int64

// Total returns the sum of all entry sizes.
func (inv Inventory) Total() int64 {
	total := int64(0)
	for _, size := range inv {
		total += size
	}
	return total
}

// Scan creates root if needed and records the size of each of its direct children.
func Scan(fs afero.Fs, root string) (Inventory, error) {
	err := fs.MkdirAll(root, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}

	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", root, err)
	}

	inv := make(Inventory, len(entries))
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if !entry.IsDir() {
			inv[path] = entry.Size()
			continue
		}
		size, err := dirSize(fs, path)
		if err != nil {
			return nil, fmt.Errorf("size %s: %w", path, err)
		}
		inv[path] = size
	}
	return inv, nil
}

// dirSize sums the size of every file below path.
func dirSize(fs afero.Fs, path string) (int64, error) {
	total := int64(0)
	err := afero.Walk(fs, path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk: %w", err)
	}
	return total, nil
}
