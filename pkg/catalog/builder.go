// Package catalog 把一次目录扫描变成可持久化的快照：
// scan -> measure -> group -> core.Catalog -> store / meta / refs
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"inktrace/pkg/core"
	"inktrace/pkg/grouper"
	"inktrace/pkg/meta"
	"inktrace/pkg/refs"
	"inktrace/pkg/scanner"
	"inktrace/pkg/storage"
	"inktrace/pkg/types"
)

// Result 是一次构建的产物
type Result struct {
	Root    string
	Assets  []core.SvgAsset
	Groups  []grouper.CharacterGroup
	Catalog *core.Catalog

	// Unmeasured 是没能算出裁切框的文件数 (读取失败或没有可用数据)
	Unmeasured int
}

// Builder 负责构建和读取快照
// meta 和 refs 可以为 nil，此时只写对象存储
type Builder struct {
	scanner *scanner.Scanner
	store   storage.Store
	meta    *meta.Repository
	refs    *refs.Manager
	logger  *slog.Logger

	now func() time.Time
}

func NewBuilder(sc *scanner.Scanner, store storage.Store, repo *meta.Repository, refMgr *refs.Manager, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		scanner: sc,
		store:   store,
		meta:    repo,
		refs:    refMgr,
		logger:  logger,
		now:     time.Now,
	}
}

// Build 扫描 root 并生成快照
// revision 是 git HEAD，非 git 目录传空串
func (b *Builder) Build(ctx context.Context, root, revision string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	// 1. 扫描 + 测量
	entries, err := b.scanner.Scan(ctx, absRoot)
	if err != nil {
		return nil, err
	}
	assets := scanner.Measure(entries)

	// 2. 分组
	groups := grouper.Group(assets)

	// 3. 生成快照
	cat, err := core.NewCatalog(absRoot, revision, b.now().Unix(), ToCatalogGroups(groups))
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	// 4. 持久化
	if err := b.store.Put(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	if b.meta != nil {
		if err := b.meta.IndexCatalog(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to index catalog: %w", err)
		}
	}
	if b.refs != nil {
		if err := b.refs.UpdateLatest(absRoot, cat.ID()); err != nil {
			return nil, fmt.Errorf("failed to update ref: %w", err)
		}
	}

	res := &Result{Root: absRoot, Assets: assets, Groups: groups, Catalog: cat}
	for _, a := range assets {
		if a.ViewBox == nil {
			res.Unmeasured++
		}
	}

	b.logger.Info("catalog built",
		slog.String("root", absRoot),
		slog.String("snapshot", cat.ID().Short()),
		slog.Int("assets", len(assets)),
		slog.Int("groups", len(groups)),
		slog.Int("unmeasured", res.Unmeasured),
	)
	return res, nil
}

// Latest 读取 root 最新的快照；从未扫描过返回 refs.ErrNoSnapshot
func (b *Builder) Latest(ctx context.Context, root string) (*core.Catalog, error) {
	if b.refs == nil {
		return nil, refs.ErrNoSnapshot
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	hash, err := b.refs.GetLatest(absRoot)
	if err != nil {
		return nil, err
	}
	return b.Load(ctx, hash)
}

// Resolve 把短哈希扩展后读取快照
func (b *Builder) Resolve(ctx context.Context, prefix types.HashPrefix) (*core.Catalog, error) {
	hash, err := b.store.ExpandHash(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return b.Load(ctx, hash)
}

// Load 从对象存储读取并校验快照
func (b *Builder) Load(ctx context.Context, hash types.Hash) (*core.Catalog, error) {
	data, err := storage.ReadAll(ctx, b.store, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("snapshot %s: %w", hash.Short(), err)
		}
		return nil, err
	}
	cat, err := core.DecodeCatalog(data)
	if err != nil {
		return nil, err
	}
	if cat.ID() != hash {
		return nil, fmt.Errorf("snapshot %s is corrupted (hash mismatch)", hash.Short())
	}
	return cat, nil
}

// Publish 把快照复制到另一个存储 (比如 S3)
func Publish(ctx context.Context, dst storage.Store, cat *core.Catalog) error {
	if err := dst.Put(ctx, cat); err != nil {
		return fmt.Errorf("failed to publish %s: %w", cat.ID().Short(), err)
	}
	return nil
}
