// Package vpk reads the directory of Valve Pak (VPK) files far enough to
// locate and extract single file entries. It understands version 1 and
// version 2 directory headers and entries stored in the directory file
// itself (preload data or the appended data section). Split archives
// (entries living in numbered companion files) are out of scope.
package vpk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	signature = 0x55aa1234

	// dirArchiveIndex marks an entry whose data lives in the directory
	// file itself rather than a numbered companion archive.
	dirArchiveIndex = 0x7fff

	entryTerminator = 0xffff

	headerSizeV1 = 12
	headerSizeV2 = 28

	// maxTreeSize caps how much directory data is read into memory.
	// Addon directory trees are a few hundred KB at most; anything
	// larger is a corrupt or hostile file.
	maxTreeSize = 32 << 20
)

var (
	// ErrNotVPK is returned when the file does not start with the VPK
	// signature.
	ErrNotVPK = errors.New("vpk: not a vpk file")

	// ErrEntryNotFound is returned when the requested entry does not
	// exist in the directory.
	ErrEntryNotFound = errors.New("vpk: entry not found")

	// ErrSplitArchive is returned when an entry's data is stored in a
	// companion archive file.
	ErrSplitArchive = errors.New("vpk: entry stored in companion archive")
)

// entry is one parsed directory entry.
type entry struct {
	preload     []byte
	entryOffset uint32
	entryLength uint32
	archiveIdx  uint16
}

// ReadEntry returns the raw bytes of the named entry from the VPK at path.
// Names use forward slashes and are relative to the pak root, e.g.
// "addoninfo.txt" or "materials/vgui/logo.vmt".
func ReadEntry(path, name string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headerSize, treeSize, err := readHeader(f)
	if err != nil {
		return nil, err
	}

	tree := make([]byte, treeSize)
	if _, err := io.ReadFull(f, tree); err != nil {
		return nil, fmt.Errorf("vpk: short directory tree: %w", err)
	}

	e, err := findEntry(tree, name)
	if err != nil {
		return nil, err
	}

	data := e.preload
	if e.entryLength > 0 {
		if e.archiveIdx != dirArchiveIndex {
			return nil, ErrSplitArchive
		}
		rest := make([]byte, e.entryLength)
		off := int64(headerSize) + int64(treeSize) + int64(e.entryOffset)
		if _, err := f.ReadAt(rest, off); err != nil {
			return nil, fmt.Errorf("vpk: reading entry data: %w", err)
		}
		data = append(append([]byte(nil), e.preload...), rest...)
	}

	return data, nil
}

// readHeader parses the VPK header and returns the header size and the
// directory tree size.
func readHeader(r io.Reader) (headerSize int, treeSize uint32, err error) {
	var fixed struct {
		Signature uint32
		Version   uint32
		TreeSize  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
		return 0, 0, ErrNotVPK
	}
	if fixed.Signature != signature {
		return 0, 0, ErrNotVPK
	}
	if fixed.TreeSize > maxTreeSize {
		return 0, 0, fmt.Errorf("vpk: directory tree too large (%d bytes)", fixed.TreeSize)
	}

	switch fixed.Version {
	case 1:
		return headerSizeV1, fixed.TreeSize, nil
	case 2:
		// v2 appends four section sizes to the header; their contents
		// (checksums, signatures) are irrelevant for entry lookup.
		var sections [4]uint32
		if err := binary.Read(r, binary.LittleEndian, &sections); err != nil {
			return 0, 0, fmt.Errorf("vpk: short v2 header: %w", err)
		}
		return headerSizeV2, fixed.TreeSize, nil
	default:
		return 0, 0, fmt.Errorf("vpk: unsupported version %d", fixed.Version)
	}
}

// findEntry walks the three-level directory tree (extension, path,
// filename) looking for the entry matching name.
func findEntry(tree []byte, name string) (*entry, error) {
	wantExt, wantPath, wantBase := splitEntryName(name)

	r := bytes.NewReader(tree)
	for {
		ext, err := readNullString(r)
		if err != nil {
			return nil, fmt.Errorf("vpk: corrupt directory: %w", err)
		}
		if ext == "" {
			return nil, ErrEntryNotFound
		}

		for {
			dir, err := readNullString(r)
			if err != nil {
				return nil, fmt.Errorf("vpk: corrupt directory: %w", err)
			}
			if dir == "" {
				break
			}
			// The pak root is stored as a single space.
			if dir == " " {
				dir = ""
			}

			for {
				base, err := readNullString(r)
				if err != nil {
					return nil, fmt.Errorf("vpk: corrupt directory: %w", err)
				}
				if base == "" {
					break
				}

				e, err := readEntryRecord(r)
				if err != nil {
					return nil, err
				}

				if ext == wantExt && dir == wantPath && base == wantBase {
					return e, nil
				}
			}
		}
	}
}

// readEntryRecord reads one fixed-size entry record plus its preload bytes.
func readEntryRecord(r *bytes.Reader) (*entry, error) {
	var rec struct {
		CRC          uint32
		PreloadBytes uint16
		ArchiveIndex uint16
		EntryOffset  uint32
		EntryLength  uint32
		Terminator   uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return nil, fmt.Errorf("vpk: corrupt directory entry: %w", err)
	}
	if rec.Terminator != entryTerminator {
		return nil, fmt.Errorf("vpk: bad entry terminator 0x%04x", rec.Terminator)
	}

	preload := make([]byte, rec.PreloadBytes)
	if _, err := io.ReadFull(r, preload); err != nil {
		return nil, fmt.Errorf("vpk: short preload data: %w", err)
	}

	return &entry{
		preload:     preload,
		entryOffset: rec.EntryOffset,
		entryLength: rec.EntryLength,
		archiveIdx:  rec.ArchiveIndex,
	}, nil
}

// splitEntryName breaks "dir/sub/name.ext" into the extension, directory
// and base name components the directory tree is keyed by.
func splitEntryName(name string) (ext, dir, base string) {
	dir = ""
	base = name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		dir = name[:i]
		base = name[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		ext = base[i+1:]
		base = base[:i]
	}
	return ext, dir, base
}

// readNullString reads a NUL-terminated string.
func readNullString(r *bytes.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}
