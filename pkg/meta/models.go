package meta

import (
	"time"

	"gorm.io/datatypes"
)

// Models 返回需要迁移的全部表
func Models() []any {
	return []any{&SnapshotRecord{}, &AssetRecord{}}
}

// SnapshotRecord 是 core.Catalog 在数据库中的投影，用于列出扫描历史
type SnapshotRecord struct {
	Hash string `gorm:"primaryKey;type:char(64)"`

	Root       string `gorm:"index;type:varchar(1024);not null"`
	Revision   string `gorm:"type:varchar(64)"`
	ScannedAt  int64  `gorm:"index"`
	GroupCount int
	AssetCount int

	CreatedAt time.Time
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}

// AssetRecord 是一个 SVG 文件的索引行，每个 root 只保留最新一次扫描的结果
type AssetRecord struct {
	ID uint `gorm:"primaryKey"`

	Root         string `gorm:"uniqueIndex:idx_asset_root_path;type:varchar(1024);not null"`
	RelativePath string `gorm:"uniqueIndex:idx_asset_root_path;type:varchar(1024);not null"`
	FileName     string `gorm:"type:varchar(255)"`

	// Key 是分组键：解码出的字符，或者文件名主干
	Key          string `gorm:"column:glyph_key;index;type:varchar(255)"`
	CodePoints   datatypes.JSON
	VariantIndex int
	Decoded      bool
	ViewBox      string `gorm:"type:varchar(128)"`

	Snapshot  string `gorm:"index;type:char(64)"`
	UpdatedAt time.Time
}

func (AssetRecord) TableName() string {
	return "assets"
}
