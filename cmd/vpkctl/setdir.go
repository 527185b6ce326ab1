package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSetDirCmd())
}

func newSetDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-dir <path>",
		Short: "Save the game directory for future runs",
		Long: `The set-dir command validates the given path and persists it to the
preferences file so later invocations (and the TUI) pick it up.

Example:
  vpkctl set-dir "~/.steam/steam/steamapps/common/Left 4 Dead 2"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetDir(args[0])
		},
	}
}

func runSetDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	settings.GameDir = dir
	if err := settings.Save(settingsPath); err != nil {
		return err
	}
	fmt.Printf("Game directory saved: %s\n", dir)
	return nil
}
