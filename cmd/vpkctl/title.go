package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/l4d2-addon-manager/internal/vpk"
)

func init() {
	rootCmd.AddCommand(newTitleCmd())
}

func newTitleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title <file.vpk>",
		Short: "Print the title embedded in a VPK file",
		Long: `The title command opens a VPK file directly, bypassing the metadata
cache, and prints the addontitle from its embedded addoninfo.txt. Useful
for checking what the scanner would extract.

Example:
  vpkctl title ~/maps/deathcraft.vpk`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTitle(args[0])
		},
	}
}

func runTitle(path string) error {
	title, err := vpk.Title(path)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]string{"path": path, "title": title})
	}
	if title == "" {
		fmt.Println("(no title)")
		return nil
	}
	fmt.Println(title)
	return nil
}
