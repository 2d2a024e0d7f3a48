package commands

import (
	"context"
	"errors"
	"fmt"

	"inktrace/pkg/catalog"
	"inktrace/pkg/glyphname"
	"inktrace/pkg/grouper"
	"inktrace/pkg/refs"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a folder for SVG files and record a snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📂 Scanning %s\n", root)
		return scanAndReport(ctxOf(cmd), cmd, root)
	},
}

// loadGroups 优先读最新快照，没有快照 (或要求重扫) 时现场扫描
func loadGroups(ctx context.Context, root string, rescan bool) ([]grouper.CharacterGroup, error) {
	if !rescan {
		cat, err := IT.Catalog.Latest(ctx, root)
		if err == nil {
			return catalog.FromCatalog(cat), nil
		}
		if !errors.Is(err, refs.ErrNoSnapshot) {
			return nil, err
		}
	}

	res, err := IT.Catalog.Build(ctx, root, revisionOf(ctx, root))
	if err != nil {
		return nil, err
	}
	return res.Groups, nil
}

// findGroup 按分组键查找，找不到时把参数当作文件名解码一次 (4E2D -> 中)
func findGroup(groups []grouper.CharacterGroup, key string) (grouper.CharacterGroup, bool) {
	if g, ok := grouper.Find(groups, key); ok {
		return g, true
	}
	name := glyphname.Decode(key)
	if name.Decoded {
		return grouper.Find(groups, name.Label())
	}
	return grouper.CharacterGroup{}, false
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
