package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// VPKExt is the file extension of an addon package.
	VPKExt = ".vpk"

	// DisabledSuffix is appended to an addon's filename to keep it on disk
	// while hiding it from the game.
	DisabledSuffix = ".disabled"

	// ThumbnailExt is the extension of an addon's sibling thumbnail image.
	ThumbnailExt = ".jpg"
)

// Addon represents one discovered addon file.
//
// Records are created fresh on every scan and are immutable afterwards;
// enabling, disabling or deleting an addon acts on the filesystem and
// requires a rescan to be reflected.
type Addon struct {
	// Name is the filename on disk, including any ".disabled" suffix.
	Name string

	// Path is the absolute path to the file on disk.
	Path string

	// Size is the file size in bytes at scan time.
	Size int64

	// ModTime is the file modification time at scan time.
	ModTime time.Time

	// ThumbnailPath is the path to a sibling .jpg sharing the addon's base
	// name. Empty if no thumbnail exists.
	ThumbnailPath string

	// Disabled reports whether the filename carries the disabled suffix.
	Disabled bool

	// Title is the human-readable name from the addon's embedded metadata.
	// Empty if the addon has none.
	Title string
}

// BaseName returns the filename with any ".disabled" suffix stripped.
func (a Addon) BaseName() string {
	return StripDisabled(a.Name)
}

// Stem returns the base filename without the ".vpk" extension. Used for
// thumbnail lookup and archive-name fallbacks.
func (a Addon) Stem() string {
	return strings.TrimSuffix(a.BaseName(), VPKExt)
}

// EnabledPath returns the path the addon file would have when enabled.
func (a Addon) EnabledPath() string {
	return filepath.Join(filepath.Dir(a.Path), a.BaseName())
}

// DisabledPath returns the path the addon file would have when disabled.
func (a Addon) DisabledPath() string {
	return filepath.Join(filepath.Dir(a.Path), a.BaseName()+DisabledSuffix)
}

// IsDisabledName reports whether a filename carries the disabled suffix.
func IsDisabledName(name string) bool {
	return strings.HasSuffix(name, DisabledSuffix)
}

// StripDisabled removes the disabled suffix from a filename, if present.
func StripDisabled(name string) string {
	return strings.TrimSuffix(name, DisabledSuffix)
}

// maxFallbackNames limits how many filename stems go into an archive name
// when no addon has a title.
const maxFallbackNames = 3

// ArchiveName derives the name (without extension) of an export archive
// from the selection.
//
// Titles are collected in first-seen order with duplicates dropped and
// joined with "-". If no addon has a title, the first three filename stems
// are joined instead, with "-and-N-more" appended when the selection is
// larger. Characters that are invalid in filenames are replaced with
// underscores.
func ArchiveName(addons []Addon) string {
	var titles []string
	seen := make(map[string]bool)
	for _, a := range addons {
		if a.Title != "" && !seen[a.Title] {
			seen[a.Title] = true
			titles = append(titles, a.Title)
		}
	}

	var name string
	if len(titles) > 0 {
		name = strings.Join(titles, "-")
	} else {
		stems := make([]string, 0, len(addons))
		for _, a := range addons {
			stems = append(stems, a.Stem())
		}
		if len(stems) > maxFallbackNames {
			name = strings.Join(stems[:maxFallbackNames], "-")
			name += fmt.Sprintf("-and-%d-more", len(stems)-maxFallbackNames)
		} else {
			name = strings.Join(stems, "-")
		}
	}

	return sanitizeFileName(name)
}

// invalidFileChars matches characters that are not allowed in filenames on
// at least one supported platform.
var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// sanitizeFileName replaces invalid filename characters with underscores.
func sanitizeFileName(name string) string {
	return invalidFileChars.ReplaceAllString(name, "_")
}
