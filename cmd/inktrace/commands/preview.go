package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"inktrace/pkg/core"

	"github.com/spf13/cobra"
)

var (
	previewOut     string
	previewDataURL bool
	previewDir     string
	previewRescan  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <file|character>",
	Short: "Print a cropped SVG (or its data URL)",
	Long: `Crop an SVG to the bounding box of its path data.
The argument is either an SVG file or a character in the scanned folder (--dir);
for a character the main variant is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asset, err := previewAsset(cmd, args[0])
		if err != nil {
			return err
		}

		// 1. data URL
		if previewDataURL {
			url, err := IT.Exporter.DataURL(asset)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		}

		// 2. 写文件
		if previewOut != "" {
			f, err := os.Create(previewOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", previewOut, err)
			}
			if err := IT.Exporter.ExportFile(asset, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", previewOut)
			return nil
		}

		// 3. 标准输出
		return IT.Exporter.ExportFile(asset, cmd.OutOrStdout())
	},
}

func previewAsset(cmd *cobra.Command, arg string) (core.SvgAsset, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return core.SvgAsset{}, err
		}
		return core.NewAsset(core.ScanEntry{
			RelativePath: filepath.Base(abs),
			AbsolutePath: abs,
			Size:         info.Size(),
		}), nil
	}

	var dirArgs []string
	if previewDir != "" {
		dirArgs = []string{previewDir}
	}
	root, err := resolveRoot(dirArgs, 0)
	if err != nil {
		return core.SvgAsset{}, err
	}
	groups, err := loadGroups(ctxOf(cmd), root, previewRescan)
	if err != nil {
		return core.SvgAsset{}, err
	}
	g, ok := findGroup(groups, arg)
	if !ok {
		return core.SvgAsset{}, fmt.Errorf("%q is neither a file nor a character in %s", arg, root)
	}
	return g.Main.Asset, nil
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "Write the cropped SVG to this file")
	previewCmd.Flags().BoolVar(&previewDataURL, "data-url", false, "Print a base64 data URL instead of SVG text")
	previewCmd.Flags().BoolVar(&previewRescan, "rescan", false, "Scan --dir again instead of using the last snapshot")
	previewCmd.Flags().StringVar(&previewDir, "dir", "", "Folder to look up characters in (default: last synced repository)")
}
