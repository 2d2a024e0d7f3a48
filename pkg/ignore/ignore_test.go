package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Defaults(t *testing.T) {
	// 1. 空目录 (没有 .inktraceignore)
	tmpDir := t.TempDir()

	// 2. 初始化 Matcher
	matcher, err := NewMatcher(tmpDir)
	require.NoError(t, err)

	// 3. 验证默认规则
	tests := []struct {
		path     string
		shouldIg bool
	}{
		{".git", true},
		{".git/objects/aa", true}, // 子路径也应该被忽略
		{".inktrace", true},
		{"node_modules/pkg/icon.svg", true},
		{".DS_Store", true},
		{"4E2D.svg", false},
		{"glyphs/cjk/6587.svg", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.shouldIg, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_WithUserFile(t *testing.T) {
	tmpDir := t.TempDir()

	// 写入自定义规则
	ignoreContent := `
# 这是注释
drafts
*.min.svg
!keep.min.svg
`
	err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(ignoreContent), 0644)
	require.NoError(t, err)

	matcher, err := NewMatcher(tmpDir)
	require.NoError(t, err)

	tests := []struct {
		path     string
		shouldIg bool
	}{
		// --- 默认规则依然要生效 ---
		{".git", true},

		// --- 用户规则生效 ---
		{"drafts", true},
		{"drafts/4E2D.svg", true},
		{"icons/arrow.min.svg", true},

		// --- 正常文件 ---
		{"icons/arrow.svg", false},

		// --- 负向规则 ---
		{"keep.min.svg", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.shouldIg, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_ExtraRules(t *testing.T) {
	matcher, err := NewMatcher(t.TempDir(), "legacy")
	require.NoError(t, err)

	assert.True(t, matcher.Matches("legacy/4E2D.svg"))
	assert.False(t, matcher.Matches("current/4E2D.svg"))
}

func TestMatcher_Nil(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Matches("anything.svg"))
}
