package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/l4d2-addon-manager/internal/config"
	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/model"
	"github.com/handiism/l4d2-addon-manager/internal/scan"
)

var (
	// Global flags
	flagDir string
	verbose bool
	jsonOut bool

	settings     *config.Settings
	settingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "vpkctl",
	Short: "Manage Left 4 Dead 2 VPK addons",
	Long: `vpkctl lists, enables, disables, imports, exports and deletes
Left 4 Dead 2 addon files. The game directory is remembered across runs;
override it per invocation with --dir.`,
	Version:      "0.1.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		if err := logging.Init(logging.Config{Level: level, Format: "console"}); err != nil {
			return err
		}

		settingsPath = config.DefaultPath()
		var err error
		settings, err = config.Load(settingsPath)
		if err != nil {
			return fmt.Errorf("loading preferences: %w", err)
		}
		if flagDir != "" {
			settings.GameDir = flagDir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Game directory (overrides the saved preference)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// gameDir returns the effective game directory or an error when none is
// configured.
func gameDir() (string, error) {
	if settings.GameDir == "" {
		return "", errors.New("no game directory configured (use --dir or vpkctl set-dir)")
	}
	return settings.GameDir, nil
}

// scanInventory scans the configured game directory.
func scanInventory() (local, workshop []model.Addon, err error) {
	dir, err := gameDir()
	if err != nil {
		return nil, nil, err
	}
	return scan.New(dir).Scan()
}

// findAddons resolves addon names (with or without the .disabled suffix)
// to records from the current inventory.
func findAddons(names []string) ([]model.Addon, error) {
	local, workshop, err := scanInventory()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]model.Addon, len(local)+len(workshop))
	for _, a := range append(local, workshop...) {
		byName[a.Name] = a
		byName[a.BaseName()] = a
	}

	out := make([]model.Addon, 0, len(names))
	var missing []string
	for _, name := range names {
		if a, ok := byName[name]; ok {
			out = append(out, a)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("addon(s) not found: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// printJSON outputs data as indented JSON.
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func main() {
	defer logging.Sync()
	execute()
}
