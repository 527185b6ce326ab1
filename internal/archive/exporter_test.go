package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/l4d2-addon-manager/internal/model"
)

// listArchive decompresses and lists the tar entries of an export archive
// in order.
func listArchive(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
		_, err = io.Copy(io.Discard, tr)
		require.NoError(t, err)
	}
	return names
}

// stubAddon writes an addon file and returns its record.
func stubAddon(t *testing.T, dir, name, title string) model.Addon {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("pak "+name), 0o644))
	return model.Addon{Name: name, Path: path, Title: title}
}

func TestExport(t *testing.T) {
	addonsDir := t.TempDir()
	outDir := t.TempDir()

	addons := []model.Addon{
		stubAddon(t, addonsDir, "zombie.vpk", "Map A"),
		stubAddon(t, addonsDir, "tank.vpk", "Map B"),
	}

	res, err := NewExporter(outDir).Export(addons)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "Map A-Map B.tar.zst"), res.ArchivePath)
	assert.Positive(t, res.Size)
	assert.Equal(t, []string{"tank.vpk", "zombie.vpk"}, listArchive(t, res.ArchivePath))

	// The staging directory never outlives the export.
	assert.NoDirExists(t, filepath.Join(outDir, ".vpk_temp"))
}

func TestExport_FallbackName(t *testing.T) {
	addonsDir := t.TempDir()
	outDir := t.TempDir()

	addons := []model.Addon{
		stubAddon(t, addonsDir, "zombie.vpk", ""),
		stubAddon(t, addonsDir, "tank.vpk", ""),
	}

	res, err := NewExporter(outDir).Export(addons)
	require.NoError(t, err)
	assert.Equal(t, "zombie-tank.tar.zst", filepath.Base(res.ArchivePath))
}

func TestExport_IncludesThumbnail(t *testing.T) {
	addonsDir := t.TempDir()
	outDir := t.TempDir()

	addon := stubAddon(t, addonsDir, "map.vpk", "")
	thumb := filepath.Join(addonsDir, "map.jpg")
	require.NoError(t, os.WriteFile(thumb, []byte("jpg"), 0o644))
	addon.ThumbnailPath = thumb

	res, err := NewExporter(outDir).Export([]model.Addon{addon})
	require.NoError(t, err)
	assert.Equal(t, []string{"map.jpg", "map.vpk"}, listArchive(t, res.ArchivePath))
}

func TestExport_EmptySelection(t *testing.T) {
	outDir := t.TempDir()

	res, err := NewExporter(outDir).Export(nil)
	assert.ErrorIs(t, err, ErrNoFilesSelected)
	assert.Nil(t, res)

	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no archive or staging leftovers")
}

func TestExport_SkipsVanishedFiles(t *testing.T) {
	addonsDir := t.TempDir()
	outDir := t.TempDir()

	present := stubAddon(t, addonsDir, "here.vpk", "")
	gone := model.Addon{
		Name: "gone.vpk",
		Path: filepath.Join(addonsDir, "gone.vpk"),
	}

	res, err := NewExporter(outDir).Export([]model.Addon{present, gone})
	require.NoError(t, err)
	assert.Equal(t, []string{"here.vpk"}, listArchive(t, res.ArchivePath))
}

func TestExport_ReplacesStaleStaging(t *testing.T) {
	addonsDir := t.TempDir()
	outDir := t.TempDir()

	// Leftovers from a crashed run must not leak into the new archive.
	stale := filepath.Join(outDir, ".vpk_temp")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "stale.vpk"), []byte("old"), 0o644))

	addon := stubAddon(t, addonsDir, "fresh.vpk", "")
	res, err := NewExporter(outDir).Export([]model.Addon{addon})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh.vpk"}, listArchive(t, res.ArchivePath))
}
