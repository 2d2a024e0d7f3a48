package catalog

import (
	"path"
	"path/filepath"

	"inktrace/pkg/core"
	"inktrace/pkg/glyphname"
	"inktrace/pkg/grouper"
	"inktrace/pkg/meta"
	"inktrace/pkg/svgbox"
)

// ToCatalogGroups 把分组结果转换成快照里的结构
func ToCatalogGroups(groups []grouper.CharacterGroup) []core.CatalogGroup {
	out := make([]core.CatalogGroup, 0, len(groups))
	for _, g := range groups {
		cg := core.CatalogGroup{
			Key:        g.Key,
			CodePoints: g.Name.CodePoints,
			Decoded:    g.Name.Decoded,
			Variants:   make([]core.CatalogVariant, 0, len(g.Variants)),
		}
		for _, v := range g.Variants {
			cg.Variants = append(cg.Variants, core.CatalogVariant{
				Path:    v.Asset.RelativePath,
				Index:   v.Index,
				ViewBox: v.Asset.ViewBox.String(),
			})
		}
		out = append(out, cg)
	}
	return out
}

// FromCatalog 从快照还原分组，不需要重新读文件
// 快照里没有文件大小，还原出的 Size 为 0
func FromCatalog(c *core.Catalog) []grouper.CharacterGroup {
	out := make([]grouper.CharacterGroup, 0, len(c.Groups))
	for _, cg := range c.Groups {
		g := grouper.CharacterGroup{Key: cg.Key}
		for _, v := range cg.Variants {
			a := core.SvgAsset{
				RelativePath: v.Path,
				AbsolutePath: joinRoot(c.Root, v.Path),
				FileName:     path.Base(v.Path),
				ViewBox:      restoreViewBox(v.ViewBox),
			}
			g.Variants = append(g.Variants, grouper.Variant{Asset: a, Index: v.Index})
		}
		if len(g.Variants) == 0 {
			continue
		}
		g.Name = glyphname.Decode(g.Variants[0].Asset.FileName)
		g.Main = g.Variants[0]
		out = append(out, g)
	}
	return out
}

// FromRecords 用索引行还原一个分组，rows 按 FindByKey 的顺序 (变体序号、路径) 排列
func FromRecords(rows []meta.AssetRecord) (grouper.CharacterGroup, bool) {
	if len(rows) == 0 {
		return grouper.CharacterGroup{}, false
	}
	g := grouper.CharacterGroup{Key: rows[0].Key}
	for _, r := range rows {
		a := core.SvgAsset{
			RelativePath: r.RelativePath,
			AbsolutePath: joinRoot(r.Root, r.RelativePath),
			FileName:     r.FileName,
			ViewBox:      restoreViewBox(r.ViewBox),
		}
		g.Variants = append(g.Variants, grouper.Variant{Asset: a, Index: r.VariantIndex})
	}
	g.Main = g.Variants[0]
	g.Name = glyphname.Decode(g.Main.Asset.FileName)
	return g, true
}

func joinRoot(root, rel string) string {
	if root == "" {
		return rel
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// restoreViewBox 解析快照里的 viewBox 字符串
// 能解析成 4 个数字的当作计算结果；否则当作文档自带的原样字符串
func restoreViewBox(s string) *svgbox.ViewBox {
	if s == "" {
		return nil
	}
	vb, err := svgbox.ParseViewBox(s)
	if err != nil {
		return &svgbox.ViewBox{Declared: true, Raw: s}
	}
	if vb.String() != s {
		vb.Declared, vb.Raw = true, s
	}
	return vb
}
