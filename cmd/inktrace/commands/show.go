package commands

import (
	"context"
	"errors"
	"fmt"

	"inktrace/pkg/catalog"
	"inktrace/pkg/exporter"
	"inktrace/pkg/glyphname"
	"inktrace/pkg/grouper"
	"inktrace/pkg/meta"

	"github.com/spf13/cobra"
)

var showRescan bool

var showCmd = &cobra.Command{
	Use:   "show <character|name> [dir]",
	Short: "Show all variants of one character",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := ctxOf(cmd)
		root, err := resolveRoot(args, 1)
		if err != nil {
			return err
		}

		// 1. 先查索引，不用读整个快照
		if !showRescan {
			g, ok, err := findIndexed(ctx, root, args[0])
			if err != nil {
				return err
			}
			if ok {
				exporter.PrintGroupDetail(g, cmd.OutOrStdout())
				return nil
			}
		}

		// 2. 索引里没有 (从未扫描，或要求重扫)
		groups, err := loadGroups(ctx, root, showRescan)
		if err != nil {
			return err
		}
		g, ok := findGroup(groups, args[0])
		if !ok {
			return fmt.Errorf("no group named %q in %s", args[0], root)
		}
		exporter.PrintGroupDetail(g, cmd.OutOrStdout())
		return nil
	},
}

// findIndexed 按分组键查元数据库，找不到时再试一次文件名解码后的字符
func findIndexed(ctx context.Context, root, key string) (grouper.CharacterGroup, bool, error) {
	keys := []string{key}
	if name := glyphname.Decode(key); name.Decoded && name.Label() != key {
		keys = append(keys, name.Label())
	}
	for _, k := range keys {
		rows, err := IT.Meta.FindByKey(ctx, root, k)
		if errors.Is(err, meta.ErrAssetNotFound) {
			continue
		}
		if err != nil {
			return grouper.CharacterGroup{}, false, err
		}
		g, ok := catalog.FromRecords(rows)
		return g, ok, nil
	}
	return grouper.CharacterGroup{}, false, nil
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRescan, "rescan", false, "Scan the folder again instead of using the index")
}
