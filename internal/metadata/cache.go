// Package metadata caches addon titles extracted from VPK files.
//
// Opening a pak and walking its directory on every scan is wasteful, so
// the first extraction result is written to a JSON sidecar in a hidden
// cache directory and reused from then on. An empty sidecar is a valid
// cached "no title found" result and stops re-extraction too.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/model"
	"github.com/handiism/l4d2-addon-manager/internal/vpk"
)

// CacheDirName is the hidden directory the sidecars live in, created as a
// sibling of the addons folder.
const CacheDirName = ".vpk_config"

// Entry is one cached metadata record.
type Entry struct {
	Title string `json:"addontitle,omitempty"`
}

// Cache reads and writes per-addon JSON sidecars under a single directory.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at dir, creating the directory if
// missing.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// sidecarPath maps an addon path to its sidecar file. The key is the base
// filename with the ".disabled" suffix and the extension stripped, so an
// addon keeps its cache entry when it is disabled and re-enabled.
func (c *Cache) sidecarPath(addonPath string) string {
	name := model.StripDisabled(filepath.Base(addonPath))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(c.dir, name+".json")
}

// Load reads the cached entry for an addon. A missing, unreadable or
// unparsable sidecar is a cache miss, never an error.
func (c *Cache) Load(addonPath string) (*Entry, bool) {
	path := c.sidecarPath(addonPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("metadata cache read failed",
				logging.String("path", path), logging.Err(err))
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		logging.Warn("metadata cache entry corrupt",
			logging.String("path", path), logging.Err(err))
		return nil, false
	}
	return &entry, true
}

// Save writes the entry as pretty-printed JSON. Failures are logged and
// swallowed; the worst case is re-extraction on the next scan.
func (c *Cache) Save(addonPath string, entry *Entry) {
	path := c.sidecarPath(addonPath)
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		logging.Warn("metadata cache encode failed",
			logging.String("path", path), logging.Err(err))
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		logging.Warn("metadata cache write failed",
			logging.String("path", path), logging.Err(err))
	}
}

// GetOrExtractTitle returns the addon's title, from cache when possible.
//
// On a miss the pak is opened and addoninfo.txt parsed; the result is
// persisted even when empty or when extraction fails, so the pak is parsed
// at most once. Extraction errors degrade to "no title".
func (c *Cache) GetOrExtractTitle(addonPath string) string {
	if entry, ok := c.Load(addonPath); ok {
		return entry.Title
	}

	title, err := vpk.Title(addonPath)
	if err != nil {
		logging.Warn("addon title extraction failed",
			logging.String("addon", addonPath), logging.Err(err))
		title = ""
	}

	c.Save(addonPath, &Entry{Title: title})
	return title
}
