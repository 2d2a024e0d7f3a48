package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"inktrace/pkg/core"
	"inktrace/pkg/glyphname"
	"inktrace/pkg/grouper"
)

// PrintStructure 解析并打印存储里的结构化对象
// 不是已知对象时返回 false，由调用者决定如何展示
func PrintStructure(data []byte, w io.Writer) (bool, error) {
	// 1. 探测类型
	var header struct {
		TypeVal core.ObjectType `cbor:"t"`
	}
	if err := core.DecodeObject(data, &header); err != nil {
		return false, nil
	}

	// 2. 分发打印
	switch header.TypeVal {
	case core.TypeCatalog:
		c, err := core.DecodeCatalog(data)
		if err != nil {
			return true, err
		}
		PrintCatalog(c, w)
		return true, nil
	default:
		return false, nil
	}
}

// PrintCatalog 打印快照头信息和分组列表
func PrintCatalog(c *core.Catalog, w io.Writer) {
	fmt.Fprintf(w, "Type:      Catalog\n")
	fmt.Fprintf(w, "Hash:      %s\n", c.ID())
	fmt.Fprintf(w, "Root:      %s\n", c.Root)
	if c.Revision != "" {
		fmt.Fprintf(w, "Revision:  %s\n", c.Revision)
	}
	fmt.Fprintf(w, "Scanned:   %s\n", time.Unix(c.ScannedAt, 0).Format(time.RFC3339))
	fmt.Fprintf(w, "Groups:    %d\n", len(c.Groups))
	fmt.Fprintf(w, "Assets:    %d\n\n", c.AssetCount())

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "KEY\tCODEPOINTS\tVARIANTS\tMAIN\n")
	for _, g := range c.Groups {
		main := "-"
		if len(g.Variants) > 0 {
			main = g.Variants[0].Path
		}
		name := glyphname.DecodedName{CodePoints: g.CodePoints}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", g.Key, orDash(name.Hex()), len(g.Variants), main)
	}
	tw.Flush()
}

// PrintGroups 打印网格视图的文本版：每个分组一行
func PrintGroups(groups []grouper.CharacterGroup, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "KEY\tCODEPOINTS\tVARIANTS\tVIEWBOX\tMAIN\n")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			g.Key,
			orDash(g.Name.Hex()),
			len(g.Variants),
			orDash(g.Main.Asset.ViewBox.String()),
			g.Main.Asset.RelativePath,
		)
	}
	tw.Flush()
}

// PrintGroupDetail 打印一个分组的所有变体 (详情视图)
func PrintGroupDetail(g grouper.CharacterGroup, w io.Writer) {
	fmt.Fprintf(w, "Character: %s\n", g.Key)
	if g.Name.Decoded {
		fmt.Fprintf(w, "Code:      %s\n", g.Name.Hex())
	} else {
		fmt.Fprintf(w, "Code:      (not decoded)\n")
	}
	fmt.Fprintf(w, "Variants:  %d\n\n", len(g.Variants))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "\tINDEX\tVIEWBOX\tSIZE\tPATH\n")
	for _, v := range g.Variants {
		marker := ""
		if v.Asset.RelativePath == g.Main.Asset.RelativePath {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			marker, v.Index, orDash(v.Asset.ViewBox.String()), fmtSize(v.Asset.Size), v.Asset.RelativePath)
	}
	tw.Flush()
}

// Summary 是扫描结束后的一行总结
func Summary(assets, groups int) string {
	return fmt.Sprintf("found %d SVGs in %d groups", assets, groups)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func fmtSize(s int64) string {
	if s <= 0 {
		return "-"
	} else if s < 1024 {
		return fmt.Sprintf("%dB", s)
	} else if s < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(s)/1024)
	}
	return fmt.Sprintf("%.2fMB", float64(s)/1024/1024)
}
