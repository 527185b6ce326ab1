package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/l4d2-addon-manager/internal/model"
)

func init() {
	rootCmd.AddCommand(newListCmd())
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed addons",
		Long: `The list command scans the addons folder and its workshop subfolder
and prints one line per addon with size, state and title.

Example:
  vpkctl list
  vpkctl list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
}

// listedAddon is the JSON shape of one inventory row.
type listedAddon struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Disabled  bool   `json:"disabled"`
	Title     string `json:"title,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

func runList() error {
	local, workshop, err := scanInventory()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string][]listedAddon{
			"local":    toListed(local),
			"workshop": toListed(workshop),
		})
	}

	fmt.Printf("Local addons (%d)\n", len(local))
	printAddons(local, true)
	fmt.Printf("\nWorkshop addons (%d)\n", len(workshop))
	printAddons(workshop, false)
	return nil
}

func toListed(addons []model.Addon) []listedAddon {
	out := make([]listedAddon, 0, len(addons))
	for _, a := range addons {
		out = append(out, listedAddon{
			Name:      a.Name,
			Path:      a.Path,
			Size:      a.Size,
			Disabled:  a.Disabled,
			Title:     a.Title,
			Thumbnail: a.ThumbnailPath,
		})
	}
	return out
}

func printAddons(addons []model.Addon, showState bool) {
	for _, a := range addons {
		state := ""
		if showState && a.Disabled {
			state = " [disabled]"
		}
		title := ""
		if a.Title != "" {
			title = fmt.Sprintf("  %q", a.Title)
		}
		fmt.Printf("  %-40s %8.2f MB%s%s\n", a.Name, float64(a.Size)/(1024*1024), state, title)
	}
}
