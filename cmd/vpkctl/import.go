package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/l4d2-addon-manager/internal/archive"
	"github.com/handiism/l4d2-addon-manager/internal/scan"
)

func init() {
	rootCmd.AddCommand(newImportCmd())
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <archive>",
		Short: "Extract an addon archive into the addons folder",
		Long: `The import command extracts a .zip, .7z, .tar, .tar.zst or .tar.zstd
archive into the game's addons folder. Existing files with the same names
are overwritten; the last import wins.

Example:
  vpkctl import ~/Downloads/campaign-pack.tar.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0])
		},
	}
}

func runImport(archivePath string) error {
	dir, err := gameDir()
	if err != nil {
		return err
	}

	if err := archive.NewImporter(scan.AddonsDir(dir)).Import(archivePath); err != nil {
		return err
	}

	local, _, err := scan.New(dir).Scan()
	if err != nil {
		return err
	}
	fmt.Printf("Imported %s (%d local addons now installed)\n", archivePath, len(local))
	return nil
}
