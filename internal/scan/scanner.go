// Package scan discovers installed addons in a game directory.
package scan

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/metadata"
	"github.com/handiism/l4d2-addon-manager/internal/model"
)

// AddonsDir returns the local addons folder for a game directory.
func AddonsDir(gameDir string) string {
	return filepath.Join(gameDir, "left4dead2", "addons")
}

// WorkshopDir returns the workshop subfolder for a game directory.
func WorkshopDir(gameDir string) string {
	return filepath.Join(AddonsDir(gameDir), "workshop")
}

// CacheDir returns the metadata cache directory, a hidden sibling of the
// addons folder.
func CacheDir(gameDir string) string {
	return filepath.Join(gameDir, "left4dead2", metadata.CacheDirName)
}

// Scanner builds addon inventories from a game directory.
type Scanner struct {
	gameDir string
	cache   *metadata.Cache
}

// New returns a scanner for gameDir. The metadata cache directory is
// created on first use.
func New(gameDir string) *Scanner {
	return &Scanner{gameDir: gameDir}
}

// Scan enumerates the local addons folder and its workshop subfolder and
// returns one record per addon file, sorted lexicographically by filename.
// A missing folder yields an empty list, not an error.
func (s *Scanner) Scan() (local, workshop []model.Addon, err error) {
	addonsDir := AddonsDir(s.gameDir)
	if _, statErr := os.Stat(addonsDir); os.IsNotExist(statErr) {
		return nil, nil, nil
	}

	if s.cache == nil {
		s.cache, err = metadata.NewCache(CacheDir(s.gameDir))
		if err != nil {
			return nil, nil, err
		}
	}

	// The glob deliberately matches the ".disabled" variant as well.
	local, err = s.scanDir(addonsDir, "*.vpk*")
	if err != nil {
		return nil, nil, err
	}

	workshop, err = s.scanDir(WorkshopDir(s.gameDir), "*.vpk")
	if err != nil {
		return nil, nil, err
	}

	logging.Debug("scan complete",
		logging.String("game_dir", s.gameDir),
		logging.Int("local", len(local)),
		logging.Int("workshop", len(workshop)))
	return local, workshop, nil
}

// scanDir builds records for every file in dir matching pattern.
func (s *Scanner) scanDir(dir, pattern string) ([]model.Addon, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	addons := make([]model.Addon, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		name := filepath.Base(path)
		addon := model.Addon{
			Name:     name,
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Disabled: model.IsDisabledName(name),
			Title:    s.cache.GetOrExtractTitle(path),
		}

		thumb := filepath.Join(dir, addon.Stem()+model.ThumbnailExt)
		if _, err := os.Stat(thumb); err == nil {
			addon.ThumbnailPath = thumb
		}

		addons = append(addons, addon)
	}
	return addons, nil
}

// HasWorkshop reports whether the workshop subfolder exists.
func (s *Scanner) HasWorkshop() bool {
	info, err := os.Stat(WorkshopDir(s.gameDir))
	return err == nil && info.IsDir()
}

// GameDir returns the directory this scanner was created for.
func (s *Scanner) GameDir() string {
	return s.gameDir
}
