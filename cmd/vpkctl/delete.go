package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/l4d2-addon-manager/internal/archive"
)

func init() {
	rootCmd.AddCommand(newDeleteCmd())
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <addon>...",
		Short: "Delete addons and their thumbnails",
		Long: `The delete command removes the named addon files and their thumbnail
images. Deletion is best-effort: one failure does not stop the batch, and
both counts are reported.

Example:
  vpkctl delete oldmap.vpk brokenmod.vpk.disabled`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args)
		},
	}
}

func runDelete(names []string) error {
	addons, err := findAddons(names)
	if err != nil {
		return err
	}

	res, err := archive.DeleteAddons(addons)
	if res != nil {
		fmt.Printf("Deleted %d file(s)", res.Deleted)
		if res.Failed > 0 {
			fmt.Printf(", %d failed", res.Failed)
		}
		fmt.Println()
	}
	return err
}
