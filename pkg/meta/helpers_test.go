package meta

import (
	"context"
	"fmt"
	"testing"

	"inktrace/pkg/core"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// -----------------------------------------------------------------------------
// 通用辅助函数 (Helpers)
// -----------------------------------------------------------------------------

// setupTestRepo 构建隔离的测试环境，每个测试一个内存库
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(Models()...))
	t.Cleanup(func() { _ = metaDB.Close() })

	return NewRepository(metaDB)
}

// mustNewCatalog 创建快照，失败直接终止测试
func mustNewCatalog(t *testing.T, root string, ts int64, groups ...core.CatalogGroup) *core.Catalog {
	t.Helper()
	c, err := core.NewCatalog(root, "", ts, groups)
	require.NoError(t, err)
	return c
}

// mustIndex 强制索引快照
func mustIndex(t *testing.T, repo *Repository, c *core.Catalog, msgAndArgs ...any) {
	t.Helper()
	require.NoError(t, repo.IndexCatalog(context.Background(), c), msgAndArgs...)
}

func group(key string, cps []rune, paths ...string) core.CatalogGroup {
	g := core.CatalogGroup{Key: key, CodePoints: cps, Decoded: len(cps) > 0}
	for i, p := range paths {
		g.Variants = append(g.Variants, core.CatalogVariant{Path: p, Index: i, ViewBox: "0 0 24 24"})
	}
	return g
}
