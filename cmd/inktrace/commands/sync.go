package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"inktrace/pkg/exporter"
	"inktrace/pkg/reposync"
	"inktrace/pkg/settings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	syncBranch string
	syncDest   string
	syncToken  string
	syncNoScan bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [repo-url]",
	Short: "Clone or pull an SVG repository, then scan it",
	Long: `Clone the repository into <dest>/<repo name>, or pull if it is already there.
Without a URL, the last successfully synced repository is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		req := buildSyncRequest(args)

		// Ctrl+C 取消正在运行的 git
		ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		job, err := IT.Syncer.Start(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "🔄 %s %s (%s) -> %s\n", job.Operation, req.RepoURL, branchOrDefault(req.Branch), job.TargetDirectory)

		printer := newProgressPrinter(out)
		var final reposync.Event
		for e := range job.Events() {
			printer.Print(e)
			if e.Done {
				final = e
			}
		}

		if !final.OK {
			if errors.Is(final.Err, reposync.ErrCancelled) {
				fmt.Fprintf(out, "🛑 %s\n", final.Message)
			}
			return final.Err
		}
		fmt.Fprintf(out, "✅ %s\n", final.Message)

		// 1. 记住这次的参数
		IT.Settings.Remember(settings.Record{
			RepoURL:           req.RepoURL,
			Branch:            branchOrDefault(req.Branch),
			DestinationFolder: req.Destination,
			Token:             req.Token,
		})
		if err := IT.Settings.Save(); err != nil {
			IT.Logger.Warn("failed to save settings", slog.Any("err", err))
		}

		// 2. 重新扫描
		if syncNoScan {
			return nil
		}
		return scanAndReport(ctx, cmd, final.TargetDirectory)
	},
}

// buildSyncRequest 合并参数：命令行 > 配置/环境变量 > 上一次的记录
func buildSyncRequest(args []string) reposync.Request {
	req := reposync.Request{
		Branch:      syncBranch,
		Destination: syncDest,
		Token:       syncToken,
	}
	if len(args) > 0 {
		req.RepoURL = args[0]
	}

	if req.Branch == "" {
		req.Branch = viper.GetString("sync.branch")
	}
	if req.Destination == "" {
		req.Destination = viper.GetString("sync.dest")
	}
	if req.Token == "" {
		req.Token = viper.GetString("token")
	}

	if last := IT.Settings.Last(); last != nil {
		sameRepo := req.RepoURL == "" || req.RepoURL == last.RepoURL
		if req.RepoURL == "" {
			req.RepoURL = last.RepoURL
			if syncBranch == "" {
				req.Branch = last.Branch
			}
		}
		if req.Destination == "" {
			req.Destination = last.DestinationFolder
		}
		if req.Token == "" && sameRepo {
			req.Token = last.Token
		}
	}

	if req.Destination == "" {
		if wd, err := os.Getwd(); err == nil {
			req.Destination = wd
		}
	}
	return req
}

func branchOrDefault(b string) string {
	if b == "" {
		return reposync.DefaultBranch
	}
	return b
}

// scanAndReport 扫描目录、写入快照并打印总结
func scanAndReport(ctx context.Context, cmd *cobra.Command, root string) error {
	out := cmd.OutOrStdout()

	res, err := IT.Catalog.Build(ctx, root, revisionOf(ctx, root))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "🔍 %s\n", exporter.Summary(len(res.Assets), len(res.Groups)))
	fmt.Fprintf(out, "📦 Snapshot %s\n", res.Catalog.ID().Short())
	if res.Unmeasured > 0 {
		fmt.Fprintf(out, "⚠️  %d files have no usable path data\n", res.Unmeasured)
	}
	return nil
}

// revisionOf 返回 git 仓库的 HEAD，不是仓库时返回空串
func revisionOf(ctx context.Context, root string) string {
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		return ""
	}
	rev, err := IT.Syncer.Revision(ctx, root)
	if err != nil {
		IT.Logger.Debug("no revision", slog.String("root", root), slog.Any("err", err))
		return ""
	}
	return rev
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVarP(&syncBranch, "branch", "b", "", "Branch to clone or pull (default main)")
	syncCmd.Flags().StringVarP(&syncDest, "dest", "d", "", "Parent folder for the clone (default: last used, then current dir)")
	syncCmd.Flags().StringVar(&syncToken, "token", "", "Access token for private https repositories (or INKTRACE_TOKEN)")
	syncCmd.Flags().BoolVar(&syncNoScan, "no-scan", false, "Do not scan after syncing")
}
