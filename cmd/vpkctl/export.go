package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/l4d2-addon-manager/internal/archive"
	"github.com/handiism/l4d2-addon-manager/internal/config"
	"github.com/handiism/l4d2-addon-manager/internal/model"
)

var (
	exportOutput string
	exportAll    bool
)

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (default: Downloads)")
	cmd.Flags().BoolVar(&exportAll, "all", false, "Export every local addon")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [addon...]",
		Short: "Bundle addons into a compressed archive",
		Long: `The export command copies the named addons (and their thumbnails) into
a zstd-compressed tar archive. The archive name is derived from the addons'
titles, falling back to filenames.

Example:
  vpkctl export mymap.vpk othermap.vpk
  vpkctl export --all -o /tmp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
}

func runExport(names []string) error {
	var addons []model.Addon
	var err error

	if exportAll {
		addons, _, err = scanInventory()
	} else {
		addons, err = findAddons(names)
	}
	if err != nil {
		return err
	}

	outputDir := exportOutput
	if outputDir == "" {
		outputDir = config.DownloadsDir()
	}

	res, err := archive.NewExporter(outputDir).Export(addons)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	fmt.Printf("Archive created: %s (%.2f MB) in %.2fs\n",
		res.ArchivePath, float64(res.Size)/(1024*1024), res.Elapsed.Seconds())
	return nil
}
