package refs

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inktrace/pkg/types"
)

var ErrNoSnapshot = errors.New("no snapshot for this folder (run scan first)")

// Manager 记录每个扫描目录最新的快照 Hash
// 布局: <rootPath>/<sha1(目录绝对路径)>，文件内容是快照 Hash
type Manager struct {
	rootPath string
}

func NewManager(rootPath string) *Manager {
	return &Manager{rootPath: rootPath}
}

// refPath 返回某个扫描目录对应的引用文件
func (m *Manager) refPath(root string) string {
	sum := sha1.Sum([]byte(filepath.Clean(root)))
	return filepath.Join(m.rootPath, hex.EncodeToString(sum[:]))
}

// GetLatest 读取目录最新的快照 Hash，从未扫描过返回 ErrNoSnapshot
func (m *Manager) GetLatest(root string) (types.Hash, error) {
	data, err := os.ReadFile(m.refPath(root))
	if os.IsNotExist(err) {
		return "", ErrNoSnapshot
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref: %w", err)
	}

	// 手工编辑时可能会带换行
	h := types.Hash(strings.TrimSpace(string(data)))
	if h.IsZero() {
		return "", ErrNoSnapshot
	}
	return h, nil
}

// UpdateLatest 原子地把目录的引用指向新快照
func (m *Manager) UpdateLatest(root string, hash types.Hash) error {
	if err := os.MkdirAll(m.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create refs dir: %w", err)
	}

	tmp, err := os.CreateTemp(m.rootPath, "ref-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(hash.String() + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), m.refPath(root))
}
