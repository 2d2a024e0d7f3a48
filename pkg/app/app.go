package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"inktrace/pkg/catalog"
	"inktrace/pkg/config"
	"inktrace/pkg/exporter"
	"inktrace/pkg/meta"
	"inktrace/pkg/refs"
	"inktrace/pkg/reposync"
	"inktrace/pkg/scanner"
	"inktrace/pkg/settings"
	"inktrace/pkg/storage"
	"inktrace/pkg/storage/cache"
	"inktrace/pkg/storage/disk"
	"inktrace/pkg/storage/s3"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器，持有所有单例服务
type App struct {
	Workspace string
	Logger    *slog.Logger

	Store    storage.Store
	DB       *meta.DB
	Meta     *meta.Repository
	Refs     *refs.Manager
	Settings *settings.Settings
	Syncer   *reposync.Syncer
	Scanner  *scanner.Scanner
	Catalog  *catalog.Builder
	Exporter *exporter.Exporter

	closers []io.Closer
}

// NewApp 按 viper 配置组装所有服务，不关心具体的 CLI 命令
func NewApp(ctx context.Context, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. 工作区
	workspace := config.Workspace()
	if workspace == "" {
		return nil, fmt.Errorf("workspace not set")
	}
	if err := os.MkdirAll(workspace, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	a := &App{Workspace: workspace, Logger: logger}

	// 2. 对象存储
	store, err := initStore(ctx, workspace, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	a.Store = store
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	// 3. 元数据库
	db, err := meta.NewDB(ctx, dbConfig(workspace))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	a.DB = db
	a.Meta = meta.NewRepository(db)
	a.closers = append(a.closers, db)

	// 4. 历史记录
	a.Settings, err = settings.Load(config.PathOr("settings.path", "settings.json"), settings.Options{
		HistoryLimit: viper.GetInt("settings.history_limit"),
		PersistToken: viper.GetBool("settings.persist_token"),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// 5. 业务服务
	a.Refs = refs.NewManager(filepath.Join(workspace, "refs"))
	a.Syncer = reposync.New(reposync.Config{GitBinary: viper.GetString("git.binary")}, logger)
	a.Scanner = scanner.New(scanner.Config{
		Workers:      viper.GetInt("scan.workers"),
		MaxFileBytes: viper.GetInt64("scan.max_file_bytes"),
		ExtraIgnore:  viper.GetStringSlice("scan.ignore"),
	}, logger)
	a.Catalog = catalog.NewBuilder(a.Scanner, a.Store, a.Meta, a.Refs, logger)
	a.Exporter = exporter.NewExporter(viper.GetInt64("scan.max_file_bytes"))

	return a, nil
}

// Close 释放数据库和缓存连接
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// initStore 根据 storage.type 选择后端，配置了 cache.redis_url 时再套一层 Redis
func initStore(ctx context.Context, workspace string, logger *slog.Logger) (storage.Store, error) {
	var backend storage.Store

	switch t := viper.GetString("storage.type"); t {
	case "", "disk":
		path := viper.GetString("storage.path")
		if path == "" {
			path = filepath.Join(workspace, "objects")
		}
		store, err := disk.NewAdapter(path)
		if err != nil {
			return nil, err
		}
		backend = store
	case "s3":
		store, err := NewS3Store(ctx, logger)
		if err != nil {
			return nil, err
		}
		backend = store
	default:
		return nil, fmt.Errorf("unsupported storage type: %q", t)
	}

	redisURL := viper.GetString("cache.redis_url")
	if redisURL == "" {
		return backend, nil
	}
	cached, err := cache.NewCachedStore(backend, cache.Config{
		RedisURL: redisURL,
		TTL:      viper.GetDuration("cache.ttl"),
	}, logger)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// NewS3Store 用 s3.* 配置创建 S3 存储，publish 命令也用它
func NewS3Store(ctx context.Context, logger *slog.Logger) (*s3.Adapter, error) {
	cfg := s3.Config{
		Endpoint:        viper.GetString("s3.endpoint"),
		Region:          viper.GetString("s3.region"),
		Bucket:          viper.GetString("s3.bucket"),
		Prefix:          viper.GetString("s3.prefix"),
		AccessKeyID:     viper.GetString("s3.access_key"),
		SecretAccessKey: viper.GetString("s3.secret_key"),
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required (set s3.bucket or INKTRACE_S3_BUCKET)")
	}
	return s3.NewAdapter(ctx, cfg, logger)
}

func dbConfig(workspace string) meta.Config {
	path := viper.GetString("database.path")
	if path == "" {
		path = filepath.Join(workspace, "index.db")
	}
	return meta.Config{
		Driver:   viper.GetString("database.driver"),
		Path:     path,
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.name"),
		SSLMode:  viper.GetString("database.sslmode"),
		Debug:    viper.GetBool("database.debug"),
	}
}
