package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"inktrace/pkg/core"
	"inktrace/pkg/grouper"

	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportSearch string
	exportRescan bool
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write cropped copies of all SVGs into a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if exportOut == "" {
			return fmt.Errorf("--out is required")
		}
		root, err := resolveRoot(args, 0)
		if err != nil {
			return err
		}
		target, err := filepath.Abs(exportOut)
		if err != nil {
			return err
		}
		if target == root {
			return fmt.Errorf("refusing to overwrite the source folder %s", root)
		}

		groups, err := loadGroups(ctxOf(cmd), root, exportRescan)
		if err != nil {
			return err
		}
		groups = grouper.Filter(groups, exportSearch)

		count := 0
		err = IT.Exporter.ExportGroups(groups, target, func(path string, asset core.SvgAsset) {
			count++
			IT.Logger.Debug("exported", slog.String("src", asset.RelativePath), slog.String("dst", path))
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Exported %d SVGs to %s\n", count, target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Destination folder")
	exportCmd.Flags().BoolVar(&exportRescan, "rescan", false, "Scan the folder again instead of using the last snapshot")
	exportCmd.Flags().StringVarP(&exportSearch, "search", "s", "", "Only export groups matching this keyword")
}
