package core

import (
	"path"

	"inktrace/pkg/svgbox"
)

// ScanEntry 是目录扫描交给核心的一条记录
// RawContent 为 nil 表示文件读取失败 (或被跳过)，此时不会计算 viewBox
type ScanEntry struct {
	RelativePath string // 相对仓库根目录，POSIX 分隔符
	AbsolutePath string
	RawContent   *string
	Size         int64
}

// SvgAsset 代表一个被发现的 SVG 文件，创建后不再修改
type SvgAsset struct {
	RelativePath string
	AbsolutePath string
	FileName     string
	ViewBox      *svgbox.ViewBox // 测量失败时为 nil
	Size         int64
}

// NewAsset 由扫描记录构造 SvgAsset，并测量裁切框
func NewAsset(e ScanEntry) SvgAsset {
	a := SvgAsset{
		RelativePath: e.RelativePath,
		AbsolutePath: e.AbsolutePath,
		FileName:     path.Base(e.RelativePath),
		Size:         e.Size,
	}
	if e.RawContent != nil {
		a.ViewBox = svgbox.ComputeViewBox(*e.RawContent)
	}
	return a
}
