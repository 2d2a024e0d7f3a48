package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyUse int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previously synced repositories",
	Long: `Show previously synced repositories, most recent first.
--use N makes entry N the default for sync and the other commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		records := IT.Settings.Snapshot()
		if len(records) == 0 {
			fmt.Fprintln(out, "No sync history yet.")
			return nil
		}

		if historyUse > 0 {
			if historyUse > len(records) {
				return fmt.Errorf("history has only %d entries", len(records))
			}
			rec := records[historyUse-1]
			IT.Settings.Remember(rec)
			if err := IT.Settings.Save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Now using %s (%s) in %s\n", rec.RepoURL, rec.Branch, targetOf(rec))
			return nil
		}

		for i, r := range records {
			lock := ""
			if r.Token != "" {
				lock = " 🔑"
			}
			fmt.Fprintf(out, "%s %s (%s)%s\n", yellow(out, fmt.Sprintf("%2d", i+1)), r.RepoURL, r.Branch, lock)
			fmt.Fprintf(out, "   -> %s\n", targetOf(r))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyUse, "use", 0, "Make history entry N the current repository")
}
