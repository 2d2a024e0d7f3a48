package svgbox

import (
	"regexp"
	"strings"
)

var (
	rootTagPattern = regexp.MustCompile(`<svg\b[^>]*>`)

	// 只匹配独立的 width/height 属性，stroke-width 之类前面是 '-' 不会命中
	sizeAttrPattern    = regexp.MustCompile(`\s(?:width|height)\s*=\s*(?:"[^"]*"|'[^']*')`)
	viewBoxAttrPattern = regexp.MustCompile(`\sviewBox\s*=\s*(?:"[^"]*"|'[^']*')`)
)

// ApplyViewBox 把裁切框写回根 <svg> 标签，并去掉 width/height，
// 让图形随容器缩放。找不到 <svg 标签时原样返回。
// vb 为 nil 时只去掉 width/height。
func ApplyViewBox(svg string, vb *ViewBox) string {
	loc := rootTagPattern.FindStringIndex(svg)
	if loc == nil {
		return svg
	}

	tag := svg[loc[0]:loc[1]]
	tag = sizeAttrPattern.ReplaceAllString(tag, "")

	if vb != nil {
		attr := ` viewBox="` + vb.String() + `"`
		if viewBoxAttrPattern.MatchString(tag) {
			tag = viewBoxAttrPattern.ReplaceAllLiteralString(tag, attr)
		} else {
			tag = insertAttr(tag, attr)
		}
	}

	return svg[:loc[0]] + tag + svg[loc[1]:]
}

// insertAttr 在标签结束符 (> 或 />) 之前插入属性
func insertAttr(tag, attr string) string {
	end := len(tag) - 1
	if strings.HasSuffix(tag, "/>") {
		end = len(tag) - 2
	}
	return tag[:end] + attr + tag[end:]
}
