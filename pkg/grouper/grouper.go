// Package grouper 把一次扫描得到的 SVG 按解码出的字符分组。
package grouper

import (
	"sort"
	"strings"

	"inktrace/pkg/core"
	"inktrace/pkg/glyphname"
)

// Variant 是分组中的一个成员
type Variant struct {
	Asset core.SvgAsset
	Index int
}

// CharacterGroup 是展示给用户的分组单位
type CharacterGroup struct {
	Key      string                // 解码出的字符，或回退用的原始主干
	Name     glyphname.DecodedName // Main 的解码结果，用于展示码位
	Variants []Variant             // 按 Index 升序
	Main     Variant
}

// Group 按文件名解码结果分组
// 分组键按首次出现的顺序输出；组内按变体序号稳定排序，序号相同时保持输入顺序。
// 纯函数，没有副作用。
func Group(assets []core.SvgAsset) []CharacterGroup {
	var groups []CharacterGroup
	position := make(map[string]int)

	for _, a := range assets {
		name := glyphname.Decode(a.FileName)
		key := name.Label()

		i, ok := position[key]
		if !ok {
			i = len(groups)
			position[key] = i
			groups = append(groups, CharacterGroup{Key: key})
		}
		groups[i].Variants = append(groups[i].Variants, Variant{Asset: a, Index: name.VariantIndex})
	}

	for i := range groups {
		g := &groups[i]
		sort.SliceStable(g.Variants, func(a, b int) bool {
			return g.Variants[a].Index < g.Variants[b].Index
		})
		// 排序后第一个就是最小序号；有 0 号变体时它一定排在最前
		g.Main = g.Variants[0]
		g.Name = glyphname.Decode(g.Main.Asset.FileName)
	}
	return groups
}

// SortByKey 按分组键排序，用于需要稳定展示顺序的场景
func SortByKey(groups []CharacterGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
}

// Filter 保留分组键等于关键字，或任一变体路径包含关键字 (不区分大小写) 的分组
// 关键字为空时原样返回
func Filter(groups []CharacterGroup, keyword string) []CharacterGroup {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return groups
	}
	lower := strings.ToLower(keyword)

	var out []CharacterGroup
	for _, g := range groups {
		if g.Key == keyword || matchesPath(g, lower) {
			out = append(out, g)
		}
	}
	return out
}

func matchesPath(g CharacterGroup, lower string) bool {
	for _, v := range g.Variants {
		if strings.Contains(strings.ToLower(v.Asset.RelativePath), lower) {
			return true
		}
	}
	return false
}

// Find 按分组键查找，找不到返回 false
func Find(groups []CharacterGroup, key string) (CharacterGroup, bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return CharacterGroup{}, false
}
