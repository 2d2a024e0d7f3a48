package exporter

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"inktrace/pkg/core"
	"inktrace/pkg/grouper"
	"inktrace/pkg/svgbox"
)

// Exporter 把 SVG 裁切后输出：写到 writer、写到目录，或者编码成 data URL
type Exporter struct {
	maxBytes int64
}

func NewExporter(maxBytes int64) *Exporter {
	return &Exporter{maxBytes: maxBytes}
}

// Crop 读取资产并返回裁切后的 SVG
// 裁切框总是按文件当前的内容计算，asset.ViewBox 来自快照，文件改过之后就不准了
func (e *Exporter) Crop(asset core.SvgAsset) (string, error) {
	raw, err := e.read(asset.AbsolutePath)
	if err != nil {
		return "", err
	}
	return svgbox.ApplyViewBox(raw, svgbox.ComputeViewBox(raw)), nil
}

func (e *Exporter) read(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := io.Reader(f)
	if e.maxBytes > 0 {
		r = io.LimitReader(f, e.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("%s is larger than %d bytes", path, e.maxBytes)
	}
	return string(data), nil
}

// ExportFile 把裁切后的 SVG 写入 writer
func (e *Exporter) ExportFile(asset core.SvgAsset, w io.Writer) error {
	svg, err := e.Crop(asset)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, svg)
	return err
}

// DataURL 返回可以直接塞进 <img src> 的预览地址
func (e *Exporter) DataURL(asset core.SvgAsset) (string, error) {
	svg, err := e.Crop(asset)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(svg), nil
}

// EncodeDataURL 把 SVG 文本编码成 base64 data URL
func EncodeDataURL(svg string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

type ExportCallback func(path string, asset core.SvgAsset)

// ExportGroups 把每个分组的所有变体裁切后写到 targetDir，保留相对路径
// 单个文件失败会中止并返回错误
func (e *Exporter) ExportGroups(groups []grouper.CharacterGroup, targetDir string, onExport ExportCallback) error {
	for _, g := range groups {
		for _, v := range g.Variants {
			fullPath := filepath.Join(targetDir, filepath.FromSlash(v.Asset.RelativePath))
			if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				return fmt.Errorf("failed to create dir for %s: %w", fullPath, err)
			}

			file, err := os.Create(fullPath)
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", fullPath, err)
			}
			if err := e.ExportFile(v.Asset, file); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			if onExport != nil {
				onExport(fullPath, v.Asset)
			}
		}
	}
	return nil
}
