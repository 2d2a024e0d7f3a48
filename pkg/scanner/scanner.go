// Package scanner 递归遍历目录，收集所有 SVG 文件并读取内容。
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inktrace/pkg/core"
	"inktrace/pkg/ignore"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers      = 8
	DefaultMaxFileBytes = 4 << 20 // 4 MiB，再大的 SVG 基本不是图标
)

// Config 控制扫描行为
type Config struct {
	Workers      int      // 并发读取文件的数量
	MaxFileBytes int64    // 超过这个大小的文件不读取内容
	ExtraIgnore  []string // 追加的忽略规则
}

// Scanner 负责目录扫描
type Scanner struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = DefaultMaxFileBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan 递归收集 root 下所有 .svg 文件 (扩展名不区分大小写)
// 返回结果按相对路径排序。单个文件读取失败只会让 RawContent 为 nil，不会中断整批扫描。
func (s *Scanner) Scan(ctx context.Context, root string) ([]core.ScanEntry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}

	matcher, err := ignore.NewMatcher(absRoot, s.cfg.ExtraIgnore...)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}

	// 1. 遍历目录，只收集路径
	var entries []core.ScanEntry
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == absRoot {
				return err
			}
			// 子目录没有权限之类的问题：记录后跳过
			s.logger.Warn("skip unreadable path", slog.String("path", path), slog.Any("err", err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matcher.Matches(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".svg") {
			return nil
		}

		entries = append(entries, core.ScanEntry{RelativePath: rel, AbsolutePath: path})
		return nil
	}
	if err := filepath.WalkDir(absRoot, walkFn); err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelativePath < entries[j].RelativePath
	})

	// 2. 并发读取内容
	// 每个 goroutine 只写自己下标的元素，不需要加锁
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range entries {
		e := &entries[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.load(e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("scan finished", slog.String("root", absRoot), slog.Int("files", len(entries)))
	return entries, nil
}

// load 读取单个文件，失败时保持 RawContent 为 nil
func (s *Scanner) load(e *core.ScanEntry) {
	info, err := os.Stat(e.AbsolutePath)
	if err != nil {
		s.logger.Warn("failed to stat svg", slog.String("path", e.RelativePath), slog.Any("err", err))
		return
	}
	e.Size = info.Size()
	if info.Size() > s.cfg.MaxFileBytes {
		s.logger.Warn("svg too large, skip measuring",
			slog.String("path", e.RelativePath),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", s.cfg.MaxFileBytes),
		)
		return
	}

	data, err := os.ReadFile(e.AbsolutePath)
	if err != nil {
		s.logger.Warn("failed to read svg", slog.String("path", e.RelativePath), slog.Any("err", err))
		return
	}
	content := string(data)
	e.RawContent = &content
}

// Measure 对整批记录计算裁切框，输出顺序与输入一致
func Measure(entries []core.ScanEntry) []core.SvgAsset {
	assets := make([]core.SvgAsset, len(entries))
	for i, e := range entries {
		assets[i] = core.NewAsset(e)
	}
	return assets
}
