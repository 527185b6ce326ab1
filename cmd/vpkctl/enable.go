package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newEnableCmd())
	rootCmd.AddCommand(newDisableCmd())
}

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <addon>...",
		Short: "Re-enable disabled addons",
		Long: `The enable command strips the .disabled suffix from the named addons
so the game loads them again.

Example:
  vpkctl enable mymap.vpk`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(args, true)
		},
	}
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <addon>...",
		Short: "Disable addons without deleting them",
		Long: `The disable command renames the named addons with a .disabled suffix
so the game skips them while the files stay on disk.

Example:
  vpkctl disable mymap.vpk`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(args, false)
		},
	}
}

func runToggle(names []string, enable bool) error {
	addons, err := findAddons(names)
	if err != nil {
		return err
	}

	for _, a := range addons {
		var from, to string
		switch {
		case enable && a.Disabled:
			from, to = a.Path, a.EnabledPath()
		case !enable && !a.Disabled:
			from, to = a.Path, a.DisabledPath()
		default:
			fmt.Printf("%s: already in requested state\n", a.Name)
			continue
		}
		if err := os.Rename(from, to); err != nil {
			return err
		}
		if enable {
			fmt.Printf("Enabled %s\n", a.BaseName())
		} else {
			fmt.Printf("Disabled %s\n", a.BaseName())
		}
	}
	return nil
}
