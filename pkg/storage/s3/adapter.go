package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"inktrace/pkg/core"
	"inktrace/pkg/storage"
	"inktrace/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Adapter 把快照存到 S3 兼容的对象存储，实现了 storage.Store 接口
type Adapter struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config 用于初始化 Adapter
type Config struct {
	Endpoint        string // 为空时使用 AWS 默认地址；MinIO 填 http://host:9000
	Region          string
	Bucket          string
	Prefix          string // 可选，所有 key 的公共前缀，比如 "catalogs/"
	AccessKeyID     string
	SecretAccessKey string
}

// NewAdapter 初始化 S3 客户端
func NewAdapter(ctx context.Context, cfg Config, logger *slog.Logger) (*Adapter, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	// 1. 基础配置：Region 和 Credentials
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	// 2. S3 专属配置用 BaseEndpoint，MinIO 必须用 Path Style
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	// 3. Bucket 不存在时尝试创建
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
			// 并发创建或权限不足，后续 Put 时会暴露真正的错误
			logger.Warn("failed to ensure bucket exists", slog.String("bucket", cfg.Bucket), slog.Any("err", err))
		}
	}

	return &Adapter{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// transformKey 将 Hash 转换为 S3 Key: "aabbcc..." -> "<prefix>aa/bbcc..."
func (s *Adapter) transformKey(hash types.Hash) string {
	h := string(hash)
	if len(h) < 2 {
		return s.prefix + h
	}
	return s.prefix + h[:2] + "/" + h[2:]
}

// Put 上传对象，已存在则跳过
func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	exists, err := s.Has(ctx, obj.ID())
	if err != nil {
		return fmt.Errorf("s3 put existence check failed: %w", err)
	}
	if exists {
		return nil
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.transformKey(obj.ID())),
		Body:        bytes.NewReader(obj.Bytes()),
		ContentType: aws.String("application/cbor"),
		Metadata:    map[string]string{"object-type": string(obj.Type())},
	})
	if err != nil {
		return fmt.Errorf("s3 put failed: %w", err)
	}
	return nil
}

// Get 下载对象
func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.transformKey(hash)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	return resp.Body, nil
}

// Has 检查对象是否存在
func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.transformKey(hash)),
	})
	if err == nil {
		return true, nil
	}

	var notFound *s3types.NotFound
	var noKey *s3types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noKey) {
		return false, nil
	}
	// 某些 S3 实现只返回通用的 404
	if strings.Contains(err.Error(), "404") {
		return false, nil
	}
	return false, err
}

// ExpandHash 利用 Prefix 列举扩展短哈希
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	in := strings.ToLower(string(short))
	if len(in) < storage.MinPrefixLen {
		return "", storage.ErrShortPrefix
	}

	// MaxKeys=2 足够区分 0 个、唯一、歧义
	resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix + in[:2] + "/" + in[2:]),
		MaxKeys: aws.Int32(2),
	})
	if err != nil {
		return "", fmt.Errorf("s3 list failed: %w", err)
	}

	switch n := aws.ToInt32(resp.KeyCount); {
	case n == 0:
		return "", storage.ErrNotFound
	case n > 1:
		return "", fmt.Errorf("%w: %s", storage.ErrAmbiguousHash, short)
	}

	// "<prefix>a8/fd123..." -> "a8fd123..."
	key := strings.TrimPrefix(aws.ToString(resp.Contents[0].Key), s.prefix)
	return types.Hash(strings.Replace(key, "/", "", 1)), nil
}
