package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"inktrace/pkg/core"
	"inktrace/pkg/storage"
	"inktrace/pkg/types"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "inktrace:obj:"

// CachedStore 是一个装饰器，为底层的 storage.Store 加一层 Redis 存在性缓存
type CachedStore struct {
	backend storage.Store
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
}

type Config struct {
	RedisURL string        // redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 过期时间
}

func NewCachedStore(backend storage.Store, cfg Config, logger *slog.Logger) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedStore{
		backend: backend,
		client:  client,
		ttl:     cfg.TTL,
		logger:  logger,
	}, nil
}

func (s *CachedStore) cacheKey(hash types.Hash) string {
	return keyPrefix + string(hash)
}

// Has 优先查 Redis，未命中再查底层存储并回填
func (s *CachedStore) Has(ctx context.Context, hash types.Hash) (bool, error) {
	key := s.cacheKey(hash)

	// 1. 查 Redis；Redis 故障时退化为无缓存模式
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.logger.Warn("redis exists failed, falling back to backend", slog.Any("err", err))
	} else if val > 0 {
		return true, nil
	}

	// 2. 查底层存储
	found, err := s.backend.Has(ctx, hash)
	if err != nil {
		return false, err
	}

	// 3. 异步回填，不阻塞主流程
	if found {
		go func() {
			fillCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.client.Set(fillCtx, key, "1", s.ttl)
		}()
	}
	return found, nil
}

// Put 先用 Has 预检，上传成功后写缓存
func (s *CachedStore) Put(ctx context.Context, obj core.Object) error {
	exists, err := s.Has(ctx, obj.ID())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.backend.Put(ctx, obj); err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.cacheKey(obj.ID()), "1", s.ttl).Err(); err != nil {
		s.logger.Warn("redis set failed", slog.String("hash", obj.ID().Short()), slog.Any("err", err))
	}
	return nil
}

// Get 透传，只缓存存在性
func (s *CachedStore) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	return s.backend.Get(ctx, hash)
}

// ExpandHash 透传
func (s *CachedStore) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, short)
}

// Close 关闭 Redis 连接
func (s *CachedStore) Close() error {
	return s.client.Close()
}
