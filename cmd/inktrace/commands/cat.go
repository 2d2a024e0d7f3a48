package commands

import (
	"fmt"

	"inktrace/pkg/exporter"
	"inktrace/pkg/storage"
	"inktrace/pkg/types"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <hash>",
	Short: "Print a stored object by (short) hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := ctxOf(cmd)
		out := cmd.OutOrStdout()

		// 1. 解析 Hash (支持短 Hash)
		hash, err := IT.Store.ExpandHash(ctx, types.HashPrefix(args[0]))
		if err != nil {
			return err
		}

		// 2. 读取数据
		data, err := storage.ReadAll(ctx, IT.Store, hash)
		if err != nil {
			return fmt.Errorf("failed to read object: %w", err)
		}

		// 3. 结构化对象 (快照) 友好打印，其余原样输出
		handled, err := exporter.PrintStructure(data, out)
		if err != nil {
			return err
		}
		if !handled {
			_, err = out.Write(data)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
