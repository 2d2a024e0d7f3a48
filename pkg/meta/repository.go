package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"inktrace/pkg/core"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAssetNotFound = errors.New("asset not found in metadata")

// DefaultSearchLimit 是 Search 在 limit <= 0 时使用的条数
const DefaultSearchLimit = 100

// Repository 封装所有对 SQL 数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// -----------------------------------------------------------------------------
// 1. 快照索引
// -----------------------------------------------------------------------------

// IndexCatalog 把快照投影进数据库：
// 记录快照本身 (幂等)，并在一个事务里替换该 root 下的全部资产行
func (r *Repository) IndexCatalog(ctx context.Context, c *core.Catalog) error {
	snapshot := SnapshotRecord{
		Hash:       string(c.ID()),
		Root:       c.Root,
		Revision:   c.Revision,
		ScannedAt:  c.ScannedAt,
		GroupCount: len(c.Groups),
		AssetCount: c.AssetCount(),
		CreatedAt:  time.Unix(c.ScannedAt, 0),
	}

	rows := make([]AssetRecord, 0, c.AssetCount())
	now := time.Now()
	for _, g := range c.Groups {
		cps, err := json.Marshal(codePointsOrEmpty(g.CodePoints))
		if err != nil {
			return fmt.Errorf("failed to marshal code points: %w", err)
		}
		for _, v := range g.Variants {
			rows = append(rows, AssetRecord{
				Root:         c.Root,
				RelativePath: v.Path,
				FileName:     path.Base(v.Path),
				Key:          g.Key,
				CodePoints:   datatypes.JSON(cps),
				VariantIndex: v.Index,
				Decoded:      g.Decoded,
				ViewBox:      v.ViewBox,
				Snapshot:     string(c.ID()),
				UpdatedAt:    now,
			})
		}
	}

	return r.db.GetConn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 快照记录，Hash 已存在则忽略
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).Create(&snapshot).Error
		if err != nil {
			return fmt.Errorf("failed to index snapshot: %w", err)
		}

		// 2. 替换该 root 的资产
		if err := tx.Where("root = ?", c.Root).Delete(&AssetRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear assets: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
			return fmt.Errorf("failed to index assets: %w", err)
		}
		return nil
	})
}

// codePointsOrEmpty 让未解码的分组存 [] 而不是 null
func codePointsOrEmpty(cps []rune) []int32 {
	out := make([]int32, len(cps))
	for i, cp := range cps {
		out[i] = int32(cp)
	}
	return out
}

// ListSnapshots 按扫描时间倒序列出某个 root 的快照
func (r *Repository) ListSnapshots(ctx context.Context, root string, limit int) ([]SnapshotRecord, error) {
	var out []SnapshotRecord
	q := r.db.GetConn().WithContext(ctx).Order("scanned_at DESC").Order("hash")
	if root != "" {
		q = q.Where("root = ?", root)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// -----------------------------------------------------------------------------
// 2. 资产查询
// -----------------------------------------------------------------------------

// Search 按关键字查资产：分组键精确匹配，或路径大小写不敏感地包含关键字
// root 为空时跨所有 root 查询
func (r *Repository) Search(ctx context.Context, root, keyword string, limit int) ([]AssetRecord, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := r.db.GetConn().WithContext(ctx).Model(&AssetRecord{})
	if root != "" {
		q = q.Where("root = ?", root)
	}
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
		q = q.Where("(glyph_key = ? OR LOWER(relative_path) LIKE ? ESCAPE '\\')", keyword, pattern)
	}

	var out []AssetRecord
	err := q.Order("root").Order("glyph_key").Order("variant_index").Order("relative_path").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FindByKey 返回一个分组的全部变体，按变体序号排序
func (r *Repository) FindByKey(ctx context.Context, root, key string) ([]AssetRecord, error) {
	var out []AssetRecord
	err := r.db.GetConn().WithContext(ctx).
		Where("root = ? AND glyph_key = ?", root, key).
		Order("variant_index").Order("relative_path").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrAssetNotFound
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
