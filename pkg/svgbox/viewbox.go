package svgbox

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Padding 是裁切框四周额外留出的用户单位
const Padding = 2.0

var (
	// pathDataPattern 查找任意元素上的 d 属性
	// 要求前面是空白，避免把 id="..." 误认为 d="..."
	pathDataPattern = regexp.MustCompile(`(?:^|\s)d\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	viewBoxPattern = regexp.MustCompile(`(?:^|\s)viewBox\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	viewBoxSeparator = regexp.MustCompile(`[\s,]+`)
)

// ViewBox 是 SVG 用户坐标系下的 (minX, minY, width, height)
type ViewBox struct {
	MinX   float64
	MinY   float64
	Width  float64
	Height float64

	// Declared 为 true 表示这是文档自带的 viewBox (回退结果)，
	// Raw 保存原始字符串，原样输出
	Declared bool
	Raw      string
}

// String 输出 "x y w h"
func (v *ViewBox) String() string {
	if v == nil {
		return ""
	}
	if v.Declared && v.Raw != "" {
		return v.Raw
	}
	return strings.Join([]string{
		formatNumber(v.MinX),
		formatNumber(v.MinY),
		formatNumber(v.Width),
		formatNumber(v.Height),
	}, " ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseViewBox 解析 "minX minY width height" (空白或逗号分隔)
func ParseViewBox(s string) (*ViewBox, error) {
	fields := viewBoxSeparator.Split(strings.TrimSpace(s), -1)
	if len(fields) != 4 {
		return nil, fmt.Errorf("invalid viewBox %q: want 4 numbers, got %d", s, len(fields))
	}

	var nums [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid viewBox %q: %w", s, err)
		}
		nums[i] = n
	}
	return &ViewBox{MinX: nums[0], MinY: nums[1], Width: nums[2], Height: nums[3]}, nil
}

// bounds 累积全局的 min/max，X 和 Y 分开统计
type bounds struct {
	minX, maxX float64
	minY, maxY float64
	hasX, hasY bool
}

func (b *bounds) add(c Coordinate) {
	switch c.Axis {
	case AxisX:
		if !b.hasX {
			b.minX, b.maxX, b.hasX = c.Value, c.Value, true
			return
		}
		b.minX = math.Min(b.minX, c.Value)
		b.maxX = math.Max(b.maxX, c.Value)
	case AxisY:
		if !b.hasY {
			b.minY, b.maxY, b.hasY = c.Value, c.Value, true
			return
		}
		b.minY = math.Min(b.minY, c.Value)
		b.maxY = math.Max(b.maxY, c.Value)
	}
}

// ComputeViewBox 估算整份 SVG 内容的包围盒，返回 nil 表示无可用结果
//
// 流程：
//  1. 按文档顺序找出所有 d 属性，逐条做 ExtractNumbers，累积全局 min/max
//  2. 没有任何数值 -> 回退到文档声明的 viewBox，再没有就返回 nil
//  3. 四周加 Padding，最小角用 floor，宽高用 ceil，保证不会裁到边缘
//
// 某一轴完全没有数值，或宽高 <= 0，都视为"没有可用的框"，同样走回退。
func ComputeViewBox(svg string) *ViewBox {
	var b bounds
	for _, m := range pathDataPattern.FindAllStringSubmatch(svg, -1) {
		for _, c := range ExtractNumbers(attrValue(m)) {
			b.add(c)
		}
	}

	if !b.hasX || !b.hasY {
		return declaredViewBox(svg)
	}

	vb := &ViewBox{
		MinX:   math.Floor(b.minX - Padding),
		MinY:   math.Floor(b.minY - Padding),
		Width:  math.Ceil(b.maxX - b.minX + 2*Padding),
		Height: math.Ceil(b.maxY - b.minY + 2*Padding),
	}
	if vb.Width <= 0 || vb.Height <= 0 || math.IsInf(vb.Width, 0) || math.IsInf(vb.Height, 0) {
		return declaredViewBox(svg)
	}
	return vb
}

// declaredViewBox 返回文档自带的 viewBox，原样保留字符串
func declaredViewBox(svg string) *ViewBox {
	m := viewBoxPattern.FindStringSubmatch(svg)
	if m == nil {
		return nil
	}
	raw := attrValue(m)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	vb := &ViewBox{Declared: true, Raw: raw}
	// 数值部分尽量解析；解析不了也不影响原样输出
	if parsed, err := ParseViewBox(raw); err == nil {
		vb.MinX, vb.MinY, vb.Width, vb.Height = parsed.MinX, parsed.MinY, parsed.Width, parsed.Height
	}
	return vb
}

// attrValue 取双引号或单引号分支中命中的那个
func attrValue(m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}
