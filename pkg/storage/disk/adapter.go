package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inktrace/pkg/core"
	"inktrace/pkg/storage"
	"inktrace/pkg/types"
)

// Adapter 把对象存到本地目录，实现了 storage.Store 接口
type Adapter struct {
	rootPath string // 比如: /home/user/icons/.inktrace/objects
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string) (*Adapter, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// layout 返回哈希对应的物理路径
// 前 2 个字符作为子目录: "aabbcc..." -> root/aa/bbcc...
func (s *Adapter) layout(hash types.Hash) string {
	h := string(hash)
	if len(h) < 2 {
		return filepath.Join(s.rootPath, h)
	}
	return filepath.Join(s.rootPath, h[:2], h[2:])
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	targetPath := s.layout(obj.ID())

	// 1. 已存在直接跳过
	if _, err := os.Stat(targetPath); err == nil {
		return nil
	}

	// 2. 准备目录
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// 3. 先写临时文件再 Rename，文件要么不存在要么完整
	tempFile, err := os.CreateTemp(dir, "temp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(obj.Bytes()); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	// 4. 移动到最终位置
	return os.Rename(tempFile.Name(), targetPath)
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	f, err := os.Open(s.layout(hash))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	_, err := os.Stat(s.layout(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandHash 在对应的分片目录里按前缀查找
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	prefix := strings.ToLower(string(short))
	if len(prefix) < storage.MinPrefixLen {
		return "", storage.ErrShortPrefix
	}

	entries, err := os.ReadDir(filepath.Join(s.rootPath, prefix[:2]))
	if os.IsNotExist(err) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	var found types.Hash
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "temp-") || !strings.HasPrefix(name, prefix[2:]) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("%w: %s", storage.ErrAmbiguousHash, short)
		}
		found = types.Hash(prefix[:2] + name)
	}

	if found == "" {
		return "", storage.ErrNotFound
	}
	return found, nil
}
