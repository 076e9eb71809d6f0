package client

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUpToDate(t *testing.T) {
	tests := []struct {
		name  string
		local Inventory
		m     *Manifest
		want  bool
	}{
		{
			name:  "sum matches with unrelated names",
			local: Inventory{"a": 5, "b": 5},
			m:     &Manifest{TotalSize: 10, Files: []RemoteFile{{Name: "c", Size: 7}, {Name: "d", Size: 3}}},
			want:  true,
		},
		{
			name:  "sum differs",
			local: Inventory{"a": 5},
			m:     &Manifest{TotalSize: 10},
		},
		{
			name:  "both empty",
			local: Inventory{},
			m:     &Manifest{},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUpToDate(tt.local, tt.m))
		})
	}
}

func TestOrphans(t *testing.T) {
	local := Inventory{
		"/game/keep.bin":   1,
		"/game/zzz.tmp":    1000,
		"/game/assets":     50,
		"/game/legacy.dll": 0,
	}
	m := &Manifest{Files: []RemoteFile{
		{Name: "keep.bin", Size: 999},
		{Name: "assets", Size: 50},
		{Name: "", Size: 1},
	}}

	assert.Equal(t, []string{"/game/legacy.dll", "/game/zzz.tmp"}, Orphans(local, m))
}

func TestPlan(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "same.bin", 10)
	writeFile(t, fs, "other.bin", 4)
	writeFile(t, fs, "junk.txt", 1)
	writeFile(t, fs, "pack/a", 6)
	writeFile(t, fs, "pack/b", 4)

	m := &Manifest{Files: []RemoteFile{
		{Name: "same.bin", Size: 10},
		{Name: "other.bin", Size: 5},
		{Name: "missing.bin", Size: 1},
		{Name: "pack", Size: 10},
		{Name: "", Size: 3},
		{Name: "../escape", Size: 3},
	}}

	c := newTestClient(t, "http://example.test", fs)
	local, err := Scan(fs, testRoot)
	require.NoError(t, err)

	toDelete, toFetch, err := c.Plan(local, m)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(testRoot, "junk.txt")}, toDelete)
	assert.Equal(t, []RemoteFile{{Name: "other.bin", Size: 5}, {Name: "missing.bin", Size: 1}}, toFetch)

	exists, err := afero.Exists(fs, filepath.Join(testRoot, "junk.txt"))
	require.NoError(t, err)
	assert.False(t, exists)

	_, again, err := c.Plan(local, m)
	require.NoError(t, err)
	assert.Equal(t, toFetch, again)
}

func TestPlanSizeChangeMovesIntoFetch(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "a.txt", 10)
	c := newTestClient(t, "http://example.test", fs)

	local, err := Scan(fs, testRoot)
	require.NoError(t, err)

	_, toFetch, err := c.Plan(local, &Manifest{Files: []RemoteFile{{Name: "a.txt", Size: 10}}})
	require.NoError(t, err)
	assert.Empty(t, toFetch)

	_, toFetch, err = c.Plan(local, &Manifest{Files: []RemoteFile{{Name: "a.txt", Size: 11}}})
	require.NoError(t, err)
	assert.Equal(t, []RemoteFile{{Name: "a.txt", Size: 11}}, toFetch)
}
