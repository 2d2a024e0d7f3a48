package commands

import (
	"fmt"

	"inktrace/pkg/exporter"
	"inktrace/pkg/grouper"

	"github.com/spf13/cobra"
)

var (
	listSearch string
	listLimit  int
	listSort   bool
	listRescan bool
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List character groups of a scanned folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		root, err := resolveRoot(args, 0)
		if err != nil {
			return err
		}

		groups, err := loadGroups(ctxOf(cmd), root, listRescan)
		if err != nil {
			return err
		}
		total := len(groups)

		// 1. 过滤 + 排序
		groups = grouper.Filter(groups, listSearch)
		if listSort {
			grouper.SortByKey(groups)
		}
		if listLimit > 0 && len(groups) > listLimit {
			groups = groups[:listLimit]
		}

		if len(groups) == 0 {
			fmt.Fprintln(out, "No matching SVGs.")
			return nil
		}

		// 2. 打印
		exporter.PrintGroups(groups, out)
		fmt.Fprintf(out, "\nShowing %d of %d groups\n", len(groups), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by character or path substring")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most n groups (0 = all)")
	listCmd.Flags().BoolVar(&listSort, "sort", false, "Sort groups by key instead of discovery order")
	listCmd.Flags().BoolVar(&listRescan, "rescan", false, "Scan the folder again instead of using the last snapshot")
}
