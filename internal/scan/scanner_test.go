package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGameDir lays out a minimal game directory and returns it.
func newGameDir(t *testing.T, localFiles, workshopFiles []string) string {
	t.Helper()

	gameDir := t.TempDir()
	require.NoError(t, os.MkdirAll(AddonsDir(gameDir), 0o755))
	for _, name := range localFiles {
		writeFile(t, filepath.Join(AddonsDir(gameDir), name))
	}
	if workshopFiles != nil {
		require.NoError(t, os.MkdirAll(WorkshopDir(gameDir), 0o755))
		for _, name := range workshopFiles {
			writeFile(t, filepath.Join(WorkshopDir(gameDir), name))
		}
	}
	return gameDir
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
}

func TestScan(t *testing.T) {
	gameDir := newGameDir(t,
		[]string{"beta.vpk", "alpha.vpk", "gamma.vpk.disabled", "notes.txt"},
		[]string{"workshop_item.vpk"},
	)

	local, workshop, err := New(gameDir).Scan()
	require.NoError(t, err)

	require.Len(t, local, 3)
	assert.Equal(t, "alpha.vpk", local[0].Name)
	assert.Equal(t, "beta.vpk", local[1].Name)
	assert.Equal(t, "gamma.vpk.disabled", local[2].Name)

	assert.False(t, local[0].Disabled)
	assert.True(t, local[2].Disabled)
	assert.Equal(t, int64(4), local[0].Size)
	assert.Equal(t, filepath.Join(AddonsDir(gameDir), "alpha.vpk"), local[0].Path)

	require.Len(t, workshop, 1)
	assert.Equal(t, "workshop_item.vpk", workshop[0].Name)
}

func TestScan_NoWorkshopDir(t *testing.T) {
	gameDir := newGameDir(t, []string{"only.vpk"}, nil)

	s := New(gameDir)
	local, workshop, err := s.Scan()
	require.NoError(t, err)

	assert.Len(t, local, 1)
	assert.Empty(t, workshop)
	assert.False(t, s.HasWorkshop())
}

func TestScan_MissingAddonsDir(t *testing.T) {
	local, workshop, err := New(filepath.Join(t.TempDir(), "nope")).Scan()
	require.NoError(t, err)
	assert.Empty(t, local)
	assert.Empty(t, workshop)
}

func TestScan_ThumbnailAssociation(t *testing.T) {
	gameDir := newGameDir(t, []string{"map.vpk", "map.jpg", "plain.vpk"}, nil)

	local, _, err := New(gameDir).Scan()
	require.NoError(t, err)

	require.Len(t, local, 2)
	assert.Equal(t, filepath.Join(AddonsDir(gameDir), "map.jpg"), local[0].ThumbnailPath)
	assert.Empty(t, local[1].ThumbnailPath)
}

func TestScan_DisabledAddonKeepsThumbnail(t *testing.T) {
	gameDir := newGameDir(t, []string{"mod.vpk.disabled", "mod.jpg"}, nil)

	local, _, err := New(gameDir).Scan()
	require.NoError(t, err)

	require.Len(t, local, 1)
	assert.Equal(t, filepath.Join(AddonsDir(gameDir), "mod.jpg"), local[0].ThumbnailPath)
}

func TestScan_TitlesFromCache(t *testing.T) {
	gameDir := newGameDir(t, []string{"pack.vpk"}, nil)

	// Pre-seed the sidecar; the stub pak itself has no readable metadata.
	require.NoError(t, os.MkdirAll(CacheDir(gameDir), 0o755))
	sidecar := filepath.Join(CacheDir(gameDir), "pack.json")
	require.NoError(t, os.WriteFile(sidecar, []byte(`{"addontitle":"Blood Harvest"}`), 0o644))

	local, _, err := New(gameDir).Scan()
	require.NoError(t, err)

	require.Len(t, local, 1)
	assert.Equal(t, "Blood Harvest", local[0].Title)
}

func TestScan_CreatesCacheDir(t *testing.T) {
	gameDir := newGameDir(t, []string{"a.vpk"}, nil)

	_, _, err := New(gameDir).Scan()
	require.NoError(t, err)
	assert.DirExists(t, CacheDir(gameDir))
}
