package session

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/l4d2-addon-manager/internal/archive"
	"github.com/handiism/l4d2-addon-manager/internal/config"
	"github.com/handiism/l4d2-addon-manager/internal/scan"
)

// newSession builds a session over a temp game directory pre-populated with
// the given local and workshop addon files, scanned and ready.
func newSession(t *testing.T, localFiles, workshopFiles []string) *Session {
	t.Helper()

	gameDir := t.TempDir()
	require.NoError(t, os.MkdirAll(scan.AddonsDir(gameDir), 0o755))
	for _, name := range localFiles {
		require.NoError(t, os.WriteFile(filepath.Join(scan.AddonsDir(gameDir), name), []byte("pak"), 0o644))
	}
	if len(workshopFiles) > 0 {
		require.NoError(t, os.MkdirAll(scan.WorkshopDir(gameDir), 0o755))
		for _, name := range workshopFiles {
			require.NoError(t, os.WriteFile(filepath.Join(scan.WorkshopDir(gameDir), name), []byte("pak"), 0o644))
		}
	}

	settings := config.DefaultSettings()
	settingsPath := filepath.Join(t.TempDir(), "preferences.json")
	s := New(settings, settingsPath)
	s.SetOutputDir(t.TempDir())
	require.NoError(t, s.SetDirectory(gameDir))
	return s
}

// writeZip writes a single-entry zip archive at path.
func writeZip(t *testing.T, path, entry string, data []byte) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(entry)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

// drain empties the event channel, returning the kinds seen.
func drain(s *Session) []EventKind {
	var kinds []EventKind
	for {
		select {
		case e := <-s.Events():
			kinds = append(kinds, e.Kind)
		default:
			return kinds
		}
	}
}

func TestSetDirectory(t *testing.T) {
	s := newSession(t, []string{"a.vpk", "b.vpk.disabled"}, []string{"w.vpk"})

	assert.Len(t, s.Local(), 2)
	assert.Len(t, s.Workshop(), 1)
	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())

	// The chosen directory is persisted.
	saved, err := config.Load(s.settingsPath)
	require.NoError(t, err)
	assert.Equal(t, s.GameDir(), saved.GameDir)

	kinds := drain(s)
	assert.Contains(t, kinds, EventInventory)
	assert.Contains(t, kinds, EventBusy)
}

func TestRescan_NoDirectory(t *testing.T) {
	s := New(config.DefaultSettings(), filepath.Join(t.TempDir(), "p.json"))
	assert.ErrorIs(t, s.Rescan(), archive.ErrDirectoryNotFound)
}

func TestSelection_MutuallyExclusive(t *testing.T) {
	s := newSession(t, []string{"a.vpk", "b.vpk"}, []string{"w.vpk"})
	local, workshop := s.Local(), s.Workshop()

	s.ToggleLocal(local[0].Path)
	s.ToggleLocal(local[1].Path)
	assert.Equal(t, 2, s.SelectionCount())

	// Selecting a workshop addon drops the local selection entirely.
	s.ToggleWorkshop(workshop[0].Path)
	assert.Equal(t, 1, s.SelectionCount())
	assert.True(t, s.IsSelected(workshop[0].Path))
	assert.False(t, s.IsSelected(local[0].Path))

	// And vice versa.
	s.ToggleLocal(local[0].Path)
	assert.False(t, s.IsSelected(workshop[0].Path))

	// Toggling an already-selected addon deselects it without touching
	// anything else.
	s.ToggleLocal(local[0].Path)
	assert.Zero(t, s.SelectionCount())
}

func TestSelectedAddons_InventoryOrder(t *testing.T) {
	s := newSession(t, []string{"c.vpk", "a.vpk", "b.vpk"}, nil)
	local := s.Local()

	// Select in reverse; resolution follows the sorted inventory.
	s.ToggleLocal(local[2].Path)
	s.ToggleLocal(local[0].Path)

	selected := s.SelectedAddons()
	require.Len(t, selected, 2)
	assert.Equal(t, "a.vpk", selected[0].Name)
	assert.Equal(t, "c.vpk", selected[1].Name)
}

func TestExportSelected(t *testing.T) {
	s := newSession(t, []string{"a.vpk", "b.vpk"}, nil)
	s.ToggleLocal(s.Local()[0].Path)

	res, err := s.ExportSelected()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.FileExists(t, res.ArchivePath)
	assert.Zero(t, s.SelectionCount(), "selection clears after a successful export")
	assert.False(t, s.Exporting())
}

func TestExportSelected_EmptySelection(t *testing.T) {
	s := newSession(t, []string{"a.vpk"}, nil)

	res, err := s.ExportSelected()
	assert.ErrorIs(t, err, archive.ErrNoFilesSelected)
	assert.Nil(t, res)
	assert.NotEmpty(t, s.Err())
	assert.False(t, s.Exporting())
}

func TestDeleteSelected(t *testing.T) {
	s := newSession(t, []string{"a.vpk", "b.vpk"}, nil)
	doomed := s.Local()[0]
	s.ToggleLocal(doomed.Path)

	res, err := s.DeleteSelected()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)

	assert.NoFileExists(t, doomed.Path)
	require.Len(t, s.Local(), 1)
	assert.Equal(t, "b.vpk", s.Local()[0].Name)
	assert.Zero(t, s.SelectionCount(), "vanished paths are pruned on rescan")
}

func TestImportArchive(t *testing.T) {
	s := newSession(t, nil, nil)

	src := filepath.Join(t.TempDir(), "bundle.zip")
	writeZip(t, src, "imported.vpk", []byte("pak"))

	require.NoError(t, s.ImportArchive(src))
	require.Len(t, s.Local(), 1)
	assert.Equal(t, "imported.vpk", s.Local()[0].Name)
}

func TestImportArchive_NoDirectory(t *testing.T) {
	s := New(config.DefaultSettings(), filepath.Join(t.TempDir(), "p.json"))
	err := s.ImportArchive("bundle.zip")
	assert.ErrorIs(t, err, archive.ErrDirectoryNotFound)
	assert.NotEmpty(t, s.Err())
}

func TestEnableDisable(t *testing.T) {
	s := newSession(t, []string{"mod.vpk"}, nil)

	require.NoError(t, s.Disable(s.Local()[0]))
	require.Len(t, s.Local(), 1)
	disabled := s.Local()[0]
	assert.Equal(t, "mod.vpk.disabled", disabled.Name)
	assert.True(t, disabled.Disabled)

	require.NoError(t, s.Enable(disabled))
	require.Len(t, s.Local(), 1)
	assert.Equal(t, "mod.vpk", s.Local()[0].Name)
	assert.False(t, s.Local()[0].Disabled)
}

func TestEnableDisable_NoOp(t *testing.T) {
	s := newSession(t, []string{"mod.vpk"}, nil)

	// Disabling a disabled addon (and the reverse) does nothing.
	require.NoError(t, s.Enable(s.Local()[0]))
	assert.Equal(t, "mod.vpk", s.Local()[0].Name)
}

func TestDeleteOne(t *testing.T) {
	s := newSession(t, []string{"a.vpk", "b.vpk"}, nil)

	require.NoError(t, s.DeleteOne(s.Local()[0]))
	require.Len(t, s.Local(), 1)
	assert.Equal(t, "b.vpk", s.Local()[0].Name)
}
