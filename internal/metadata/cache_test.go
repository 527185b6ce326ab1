package metadata

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePak writes a minimal v1 VPK containing a single addoninfo.txt with
// the given content.
func writePak(t *testing.T, path, info string) {
	t.Helper()

	var tree bytes.Buffer
	for _, s := range []string{"txt", " ", "addoninfo"} {
		tree.WriteString(s)
		tree.WriteByte(0)
	}
	binary.Write(&tree, binary.LittleEndian, uint32(0))      // crc
	binary.Write(&tree, binary.LittleEndian, uint16(0))      // preload bytes
	binary.Write(&tree, binary.LittleEndian, uint16(0x7fff)) // dir-file data
	binary.Write(&tree, binary.LittleEndian, uint32(0))      // offset
	binary.Write(&tree, binary.LittleEndian, uint32(len(info)))
	binary.Write(&tree, binary.LittleEndian, uint16(0xffff)) // terminator
	tree.Write([]byte{0, 0, 0})

	var pak bytes.Buffer
	binary.Write(&pak, binary.LittleEndian, uint32(0x55aa1234))
	binary.Write(&pak, binary.LittleEndian, uint32(1))
	binary.Write(&pak, binary.LittleEndian, uint32(tree.Len()))
	pak.Write(tree.Bytes())
	pak.WriteString(info)

	require.NoError(t, os.WriteFile(path, pak.Bytes(), 0o644))
}

func TestGetOrExtractTitle(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(filepath.Join(dir, ".vpk_config"))
	require.NoError(t, err)

	addon := filepath.Join(dir, "mod.vpk")
	writePak(t, addon, "addontitle \"Cold Stream\"\n")

	assert.Equal(t, "Cold Stream", cache.GetOrExtractTitle(addon))

	sidecar := filepath.Join(cache.Dir(), "mod.json")
	assert.FileExists(t, sidecar)

	// Once cached the pak is never reopened: corrupt it and ask again.
	require.NoError(t, os.WriteFile(addon, []byte("garbage"), 0o644))
	assert.Equal(t, "Cold Stream", cache.GetOrExtractTitle(addon))
}

func TestGetOrExtractTitle_EmptyResultCached(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(filepath.Join(dir, ".vpk_config"))
	require.NoError(t, err)

	addon := filepath.Join(dir, "untitled.vpk")
	writePak(t, addon, "addonversion \"1\"\n")

	assert.Empty(t, cache.GetOrExtractTitle(addon))

	// The "no title" result is persisted too.
	_, ok := cache.Load(addon)
	assert.True(t, ok)
}

func TestGetOrExtractTitle_ExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(filepath.Join(dir, ".vpk_config"))
	require.NoError(t, err)

	addon := filepath.Join(dir, "broken.vpk")
	require.NoError(t, os.WriteFile(addon, []byte("not a pak"), 0o644))

	assert.Empty(t, cache.GetOrExtractTitle(addon))
	_, ok := cache.Load(addon)
	assert.True(t, ok, "failed extraction should still be cached")
}

func TestSidecarKey_IgnoresDisabledSuffix(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(filepath.Join(dir, ".vpk_config"))
	require.NoError(t, err)

	enabled := filepath.Join(dir, "mod.vpk")
	writePak(t, enabled, "addontitle \"Survivors\"\n")
	assert.Equal(t, "Survivors", cache.GetOrExtractTitle(enabled))

	// The same addon disabled resolves to the same sidecar, so the title
	// survives without touching the (now renamed) pak.
	disabled := filepath.Join(dir, "mod.vpk.disabled")
	assert.Equal(t, "Survivors", cache.GetOrExtractTitle(disabled))
}

func TestLoad_CorruptSidecarIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(filepath.Join(dir, ".vpk_config"))
	require.NoError(t, err)

	addon := filepath.Join(dir, "mod.vpk")
	require.NoError(t, os.WriteFile(filepath.Join(cache.Dir(), "mod.json"), []byte("{not json"), 0o644))

	_, ok := cache.Load(addon)
	assert.False(t, ok)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	cache.Save("/addons/pack.vpk", &Entry{Title: "Dark Carnival"})

	entry, ok := cache.Load("/addons/pack.vpk.disabled")
	require.True(t, ok)
	assert.Equal(t, "Dark Carnival", entry.Title)
}
