package svgbox

import (
	"regexp"
	"strconv"
)

// Axis 表示一个数值被归类到的坐标轴
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "X"
	}
	return "Y"
}

// Coordinate 是从 path data 中提取出来的一个数值及其所属坐标轴
type Coordinate struct {
	Value float64
	Axis  Axis
}

// numberPattern 匹配 "可选负号 + 数字/小数点" 的最长子串
// 故意写得很宽松："1.2.3" 也会被整体匹配，交给 parseToken 取最长合法前缀
var numberPattern = regexp.MustCompile(`-?[\d.]+`)

// leadingNumber 是一个 token 内最长的合法十进制前缀
// "1.2.3" -> "1.2"，"5." -> "5."，"." -> 无
var leadingNumber = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// parseToken 解析 token 的最长合法前缀，没有则返回 false
func parseToken(tok string) (float64, bool) {
	prefix := leadingNumber.FindString(tok)
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// 超出 float64 范围 (ErrRange) 也视为无效
		return 0, false
	}
	return v, true
}

// ExtractNumbers 从一条 path 的 d 属性中提取所有数值，并按奇偶位置分配坐标轴
//
// 规则：在整条字符串的 token 序列中，偶数下标 -> X，奇数下标 -> Y。
// 这是启发式而非 path 语法解析器：
//   - 不区分相对/绝对命令 (m 与 M 一视同仁)
//   - 不处理 H/V/A 这类会打破 X/Y 交替的命令
//   - 不模拟相对命令的游标位置
//
// 解析失败的 token 直接丢弃，但仍然占用一个下标位置。
func ExtractNumbers(d string) []Coordinate {
	tokens := numberPattern.FindAllString(d, -1)
	if len(tokens) == 0 {
		return nil
	}

	coords := make([]Coordinate, 0, len(tokens))
	for i, tok := range tokens {
		v, ok := parseToken(tok)
		if !ok {
			continue
		}

		axis := AxisX
		if i%2 == 1 {
			axis = AxisY
		}
		coords = append(coords, Coordinate{Value: v, Axis: axis})
	}
	return coords
}
