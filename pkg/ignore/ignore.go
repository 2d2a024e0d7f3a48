package ignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName 是用户自定义忽略规则所在的文件 (放在被扫描仓库的根目录)
const FileName = ".inktraceignore"

// Matcher 封装了忽略逻辑
// 它负责判断扫描时一个路径是否应该被跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 被扫描的仓库根目录（用于查找 .inktraceignore 文件）
func NewMatcher(rootPath string, extraRules ...string) (*Matcher, error) {
	// 1. 系统级默认规则
	defaultRules := []string{
		// --- 元数据目录 ---
		".git",      // Git 仓库数据，里面不会有要展示的 SVG
		".inktrace", // 本工具的工作目录

		// --- 体积大且无关的目录 ---
		"node_modules",

		// --- 常见垃圾文件 ---
		".DS_Store", // macOS
		"Thumbs.db", // Windows
	}
	// 配置文件里的 scan.ignore 追加在默认规则之后
	defaultRules = append(defaultRules, extraRules...)

	var ignorer *gitignore.GitIgnore
	var err error

	// 2. 检查仓库里是否有 .inktraceignore
	ignoreFilePath := filepath.Join(rootPath, FileName)

	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		// 情况 A: 用户定义了规则文件，与默认规则合并编译
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
	} else {
		// 情况 B: 仅编译默认规则
		ignorer = gitignore.CompileIgnoreLines(defaultRules...)
	}

	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Matches 检查给定的路径是否匹配忽略规则
// path: 相对于仓库根目录的 POSIX 路径 (例如 "glyphs/4E2D.svg")
// 返回: true 表示应该跳过
func (m *Matcher) Matches(path string) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(path)
}
