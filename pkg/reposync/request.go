package reposync

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const DefaultBranch = "main"

var (
	ErrInvalidRequest = errors.New("invalid sync request")
	ErrNotRepository  = errors.New("folder exists and is not a git repository")
	ErrCancelled      = errors.New("sync cancelled")
)

// Request 描述一次仓库同步
// Token 只会被当作不透明字符串拼进 URL，不做任何校验
type Request struct {
	RepoURL     string
	Branch      string
	Destination string // 父目录，仓库会被放到 Destination/<repo name>
	Token       string
}

// Validate 检查必填字段，并补齐默认分支
func (r *Request) Validate() error {
	r.RepoURL = strings.TrimSpace(r.RepoURL)
	r.Destination = strings.TrimSpace(r.Destination)
	r.Branch = strings.TrimSpace(r.Branch)

	if r.RepoURL == "" {
		return fmt.Errorf("%w: repository url is required", ErrInvalidRequest)
	}
	if r.Destination == "" {
		return fmt.Errorf("%w: destination folder is required", ErrInvalidRequest)
	}
	if r.Branch == "" {
		r.Branch = DefaultBranch
	}
	if RepoName(r.RepoURL) == "" {
		return fmt.Errorf("%w: cannot derive repository name from %q", ErrInvalidRequest, r.RepoURL)
	}
	return nil
}

// TargetDirectory 返回仓库最终所在的目录
func (r Request) TargetDirectory() string {
	return filepath.Join(r.Destination, RepoName(r.RepoURL))
}

// RepoName 取 URL 最后一段并去掉 .git 后缀
// 支持 https://host/a/b.git、git@host:a/b.git 以及本地路径
func RepoName(repoURL string) string {
	s := strings.TrimRight(strings.TrimSpace(repoURL), "/\\")
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		s = u.Path
	}
	if i := strings.LastIndexAny(s, `/\:`); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ".git")
	if s == "" || s == "." || s == ".." {
		return ""
	}
	return s
}

// authURL 把 token 作为 userinfo 注入 http(s) URL，其他协议原样返回
func authURL(repoURL, token string) string {
	if token == "" {
		return repoURL
	}
	u, err := url.Parse(repoURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return repoURL
	}
	u.User = url.UserPassword("x-access-token", token)
	return u.String()
}

// redact 从消息中抹掉 token
func redact(s, token string) string {
	if token == "" {
		return s
	}
	// authURL 写进 URL 的是 userinfo 转义后的形式 (空格 -> %20)
	userinfo := strings.TrimPrefix(url.UserPassword("x-access-token", token).String(), "x-access-token:")
	for _, form := range []string{userinfo, url.QueryEscape(token), url.PathEscape(token), token} {
		s = strings.ReplaceAll(s, form, "***")
	}
	return s
}

// Operation 是同步要执行的 git 操作
type Operation int

const (
	OpClone Operation = iota
	OpPull
)

func (o Operation) String() string {
	if o == OpPull {
		return "pull"
	}
	return "clone"
}

// Plan 根据目标目录的状态决定 clone 还是 pull
//   - 不存在           -> clone
//   - 是 git 仓库       -> pull
//   - 不是仓库但为空     -> clone 进去
//   - 不是仓库且非空     -> ErrNotRepository
func Plan(target string) (Operation, error) {
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return OpClone, nil
	}
	if err != nil {
		return OpClone, fmt.Errorf("failed to inspect %s: %w", target, err)
	}
	if !info.IsDir() {
		return OpClone, fmt.Errorf("%w: %s is a file", ErrNotRepository, target)
	}

	if _, err := os.Stat(filepath.Join(target, ".git")); err == nil {
		return OpPull, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return OpClone, fmt.Errorf("failed to list %s: %w", target, err)
	}
	if len(entries) == 0 {
		return OpClone, nil
	}
	return OpClone, ErrNotRepository
}
