package commands

import (
	"fmt"

	"inktrace/pkg/app"
	"inktrace/pkg/catalog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var publishCmd = &cobra.Command{
	Use:   "publish [dir]",
	Short: "Upload the latest snapshot of a folder to S3",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := ctxOf(cmd)

		root, err := resolveRoot(args, 0)
		if err != nil {
			return err
		}

		// 1. 读取本地最新快照
		cat, err := IT.Catalog.Latest(ctx, root)
		if err != nil {
			return err
		}

		// 2. 连接远端
		fmt.Fprintf(out, "🚀 Publishing snapshot %s to s3://%s\n", cat.ID().Short(), viper.GetString("s3.bucket"))
		remote, err := app.NewS3Store(ctx, IT.Logger)
		if err != nil {
			return err
		}

		// 3. 上传 (已存在则跳过)
		exists, err := remote.Has(ctx, cat.ID())
		if err != nil {
			return err
		}
		if exists {
			fmt.Fprintln(out, "✨ Already up to date")
			return nil
		}
		if err := catalog.Publish(ctx, remote, cat); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Published %s (%d groups, %d SVGs)\n", cat.ID(), len(cat.Groups), cat.AssetCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
