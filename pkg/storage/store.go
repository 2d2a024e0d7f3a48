package storage

import (
	"context"
	"errors"
	"io"

	"inktrace/pkg/core"
	"inktrace/pkg/types"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrAmbiguousHash = errors.New("ambiguous hash prefix")
	ErrShortPrefix   = errors.New("hash prefix too short")
)

// MinPrefixLen 是短哈希的最小长度
const MinPrefixLen = 4

// Store 是快照对象的存储后端 (本地磁盘、S3，或者套一层缓存)
type Store interface {
	// Put 持久化一个对象，Hash 由对象自己给出
	// 对象已存在时直接返回 nil
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取原始数据，调用方负责 Close
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把用户输入的短哈希扩展成完整 Hash
	ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error)
}

// ReadAll 读取整个对象
func ReadAll(ctx context.Context, s Store, hash types.Hash) ([]byte, error) {
	rc, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
