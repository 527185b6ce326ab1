package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// Settings holds all persisted preferences.
type Settings struct {
	// GameDir is the Left 4 Dead 2 installation directory last chosen by
	// the user. Empty until a directory has been picked.
	GameDir string `json:"game_dir"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `json:"log_level"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel: "info",
	}
}

// DefaultPath returns the default preferences file location,
// ~/.l4d2_vpk_manager/preferences.json.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".l4d2_vpk_manager", "preferences.json")
}

// Load reads settings from a JSON file. A missing file yields defaults, not
// an error; a corrupt file does return an error so the caller can decide
// whether to overwrite it.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file, creating parent directories as
// needed.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DownloadsDir returns the user's Downloads folder, falling back to the
// home directory when it cannot be located.
func DownloadsDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	if runtime.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			downloads := filepath.Join(profile, "Downloads")
			if info, err := os.Stat(downloads); err == nil && info.IsDir() {
				return downloads
			}
		}
		return homeDir
	}

	downloads := filepath.Join(homeDir, "Downloads")
	if info, err := os.Stat(downloads); err == nil && info.IsDir() {
		return downloads
	}
	return homeDir
}
