// Package settings 持久化同步历史和最近一次使用的参数
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const DefaultHistoryLimit = 20

// Record 是一次成功同步所用的参数
type Record struct {
	RepoURL           string `json:"repoUrl"`
	Branch            string `json:"branch"`
	DestinationFolder string `json:"destinationFolder"`
	Token             string `json:"token,omitempty"`
}

// Key 是历史记录去重用的键
func (r Record) Key() string {
	return r.RepoURL + "@@" + r.Branch
}

// Settings 管理历史记录，按最近使用排序
type Settings struct {
	path         string
	historyLimit int
	persistToken bool

	History  []Record `json:"history"`
	LastUsed *Record  `json:"lastUsed,omitempty"`
	mu       sync.RWMutex
}

// Options 控制历史长度和是否保存 token
type Options struct {
	HistoryLimit int
	PersistToken bool
}

// Load 读取 settings 文件，文件不存在时返回空设置
func Load(path string, opts Options) (*Settings, error) {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	s := &Settings{
		path:         path,
		historyLimit: opts.HistoryLimit,
		persistToken: opts.PersistToken,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("corrupted settings file %s: %w", path, err)
	}
	return s, nil
}

// Remember 记录一次成功的同步：更新 LastUsed，并把记录移到历史最前面
func (s *Settings) Remember(rec Record) {
	if !s.persistToken {
		rec.Token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	s.History = slices.DeleteFunc(s.History, func(r Record) bool { return r.Key() == key })
	s.History = append([]Record{rec}, s.History...)
	if len(s.History) > s.historyLimit {
		s.History = s.History[:s.historyLimit]
	}

	last := rec
	s.LastUsed = &last
}

// Last 返回最近一次使用的参数，没有则返回 nil
func (s *Settings) Last() *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUsed == nil {
		return nil
	}
	r := *s.LastUsed
	return &r
}

// Snapshot 返回历史记录的副本
func (s *Settings) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.History)
}

// Save 原子地写回磁盘 (临时文件 + rename)
func (s *Settings) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "settings-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // rename 成功后这里是 no-op

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// token 可能落盘，权限收紧到 0600
	if err := os.Chmod(tmpName, 0600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Path 返回 settings 文件位置
func (s *Settings) Path() string { return s.path }
