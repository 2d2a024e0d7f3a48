package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchDir   string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search indexed SVGs across all scanned folders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		root := ""
		if searchDir != "" {
			abs, err := filepath.Abs(searchDir)
			if err != nil {
				return err
			}
			root = abs
		}

		rows, err := IT.Meta.Search(ctxOf(cmd), root, args[0], searchLimit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintf(out, "No SVGs match %q (run scan first?)\n", args[0])
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "KEY\tVARIANT\tVIEWBOX\tPATH\n")
		for _, r := range rows {
			vb := r.ViewBox
			if vb == "" {
				vb = "-"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Key, r.VariantIndex, vb, filepath.Join(r.Root, filepath.FromSlash(r.RelativePath)))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchDir, "dir", "", "Only search this scanned folder")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum number of results (default 100)")
}
