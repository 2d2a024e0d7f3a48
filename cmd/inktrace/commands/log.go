package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log [dir]",
	Short: "Show scan history of a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		root, err := resolveRoot(args, 0)
		if err != nil {
			return err
		}

		snaps, err := IT.Meta.ListSnapshots(ctxOf(cmd), root, logLimit)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Fprintf(out, "No snapshots for %s (run scan first)\n", root)
			return nil
		}

		for _, s := range snaps {
			// 黄色高亮 Hash
			fmt.Fprintln(out, yellow(out, "snapshot "+s.Hash))
			fmt.Fprintf(out, "Date:     %s\n", time.Unix(s.ScannedAt, 0).Format(time.RFC1123))
			if s.Revision != "" {
				fmt.Fprintf(out, "Revision: %s\n", s.Revision)
			}
			fmt.Fprintf(out, "\n    %d SVGs in %d groups\n\n", s.AssetCount, s.GroupCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Number of snapshots to show")
}
