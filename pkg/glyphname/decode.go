// Package glyphname 把图标文件名解码成 Unicode 字符和变体序号。
//
// 文件名约定：<token1>[_<token2>...][-<variant>].svg
// 每个 token 是一个十六进制码位，可以带图标字体常见的前缀 (u, uni, U+, 0x)。
// 例如 "4E2D.svg" -> "中"，"uni4E2D-2.svg" -> "中" 的第 2 个变体，
// "1F468_200D_1F4BB.svg" -> ZWJ emoji 序列。
package glyphname

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// knownPrefixes 按长度从长到短排列，匹配时大小写不敏感
var knownPrefixes = []string{"uni", "u+", "0x", "u"}

var (
	hexPattern     = regexp.MustCompile(`^[0-9A-Fa-f]{4,6}$`)
	variantPattern = regexp.MustCompile(`^(.+)-(\d+)$`)
)

// DecodedName 是文件名解码的结果
// Decoded 为 false 时，Stem 作为显示用的回退标签
type DecodedName struct {
	Stem             string // 去掉扩展名和变体后缀后的原始主干
	CodePoints       []rune
	VariantIndex     int
	DisplayCharacter string
	Decoded          bool
}

// Label 返回分组用的键：解码成功用字符，否则用原始主干
func (n DecodedName) Label() string {
	if n.Decoded {
		return n.DisplayCharacter
	}
	return n.Stem
}

// Hex 以 "U+4E2D U+200D" 的形式输出码位
func (n DecodedName) Hex() string {
	parts := make([]string, len(n.CodePoints))
	for i, cp := range n.CodePoints {
		parts[i] = fmt.Sprintf("U+%04X", cp)
	}
	return strings.Join(parts, " ")
}

// Decode 解码文件名，只看最后一段路径
// 永远不会失败：解码不了就返回 Decoded=false 的结果
func Decode(name string) DecodedName {
	stem := baseName(name)
	if len(stem) >= 4 && strings.EqualFold(stem[len(stem)-4:], ".svg") {
		stem = stem[:len(stem)-4]
	}

	result := DecodedName{Stem: stem}

	// 1. 变体后缀 -<digits>
	if m := variantPattern.FindStringSubmatch(stem); m != nil {
		if idx, err := strconv.Atoi(m[2]); err == nil {
			result.Stem = m[1]
			result.VariantIndex = idx
		}
	}

	// 2. 按 '_' 切分，丢弃空 token
	var tokens []string
	for _, tok := range strings.Split(result.Stem, "_") {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return result
	}

	// 3. 每个 token 都必须是合法码位，任何一个失败则整体失败
	codePoints := make([]rune, 0, len(tokens))
	for _, tok := range tokens {
		cp, ok := parseToken(tok)
		if !ok {
			return result
		}
		codePoints = append(codePoints, cp)
	}

	var sb strings.Builder
	for _, cp := range codePoints {
		sb.WriteRune(cp)
	}

	result.CodePoints = codePoints
	result.DisplayCharacter = sb.String()
	result.Decoded = true
	return result
}

// parseToken 去掉已知前缀后，要求恰好 4-6 位十六进制，且是合法的 Unicode 标量值
func parseToken(tok string) (rune, bool) {
	for _, candidate := range candidates(tok) {
		if !hexPattern.MatchString(candidate) {
			continue
		}
		v, err := strconv.ParseUint(candidate, 16, 32)
		if err != nil {
			continue
		}
		r := rune(v)
		if !utf8.ValidRune(r) {
			// 超出 0x10FFFF 或代理区
			return 0, false
		}
		return r, true
	}
	return 0, false
}

// candidates 返回 token 本身，以及去掉每个已知前缀后的剩余部分
func candidates(tok string) []string {
	out := []string{tok}
	lower := strings.ToLower(tok)
	for _, p := range knownPrefixes {
		if strings.HasPrefix(lower, p) {
			out = append(out, tok[len(p):])
		}
	}
	return out
}

func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
