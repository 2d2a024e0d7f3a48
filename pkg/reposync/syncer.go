// Package reposync 通过系统的 git 命令把远程仓库 clone/pull 到本地，
// 以可取消的后台任务运行，并把进度以事件流的形式推送出去。
package reposync

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// eventBuffer 是事件通道的容量，最后一格永远留给结束事件
	eventBuffer = 64

	waitDelay = 2 * time.Second
)

// Event 是同步任务推送的事件
// 进度事件 Done=false；每个任务最后恰好有一个 Done=true 的结束事件，随后通道关闭
type Event struct {
	JobID   string
	Phase   string
	Percent *int // git 没有给出百分比时为 nil
	Message string

	Done            bool
	OK              bool
	TargetDirectory string
	Err             error
}

// Job 是一次正在进行的同步
type Job struct {
	ID              string
	TargetDirectory string
	Operation       Operation

	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
	final  Event
}

// Events 返回事件流
func (j *Job) Events() <-chan Event { return j.events }

// Cancel 请求取消 (协作式，git 进程会被终止)
func (j *Job) Cancel() { j.cancel() }

// Wait 阻塞到任务结束，返回结束事件
// 与 Events 二选一使用即可，Wait 不消费事件流
func (j *Job) Wait() Event {
	<-j.done
	return j.final
}

// Config 控制 git 的调用方式
type Config struct {
	GitBinary string // 默认 "git"
}

// Syncer 管理所有同步任务
type Syncer struct {
	git    string
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job
}

func New(cfg Config, logger *slog.Logger) *Syncer {
	if cfg.GitBinary == "" {
		cfg.GitBinary = "git"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		git:    cfg.GitBinary,
		logger: logger,
		jobs:   make(map[string]*Job),
	}
}

// Start 校验请求、决定操作，然后在后台执行
// 参数错误和 "目录存在但不是仓库" 会直接返回错误，不会创建任务
func (s *Syncer) Start(ctx context.Context, req Request) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	target := req.TargetDirectory()

	op, err := Plan(target)
	if err != nil {
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:              uuid.New().String(),
		TargetDirectory: target,
		Operation:       op,
		events:          make(chan Event, eventBuffer),
		cancel:          cancel,
		done:            make(chan struct{}),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.logger.Info("sync started",
		slog.String("job", job.ID),
		slog.String("op", op.String()),
		slog.String("url", redact(req.RepoURL, req.Token)),
		slog.String("branch", req.Branch),
		slog.String("target", target),
	)

	go s.run(jobCtx, job, req)
	return job, nil
}

// Cancel 按 ID 取消任务，任务不存在 (或已结束) 返回 false
func (s *Syncer) Cancel(jobID string) bool {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	job.Cancel()
	return true
}

func (s *Syncer) run(ctx context.Context, job *Job, req Request) {
	defer job.cancel()

	final := s.execute(ctx, job, req)
	final.JobID = job.ID
	final.Done = true
	final.TargetDirectory = job.TargetDirectory

	s.mu.Lock()
	delete(s.jobs, job.ID)
	s.mu.Unlock()

	if final.OK {
		s.logger.Info("sync finished", slog.String("job", job.ID), slog.String("msg", final.Message))
	} else {
		s.logger.Warn("sync failed", slog.String("job", job.ID), slog.Any("err", final.Err))
	}

	job.final = final
	job.events <- final // 预留了空位，不会阻塞
	close(job.events)
	close(job.done)
}

func (s *Syncer) execute(ctx context.Context, job *Job, req Request) Event {
	target := job.TargetDirectory
	remote := authURL(req.RepoURL, req.Token)

	var args []string
	var okMsg string
	createdTarget := false

	switch job.Operation {
	case OpPull:
		s.emit(job, Event{Message: "Updating repository..."})
		// 直接对 URL pull，避免把 token 写进 .git/config
		args = []string{"-C", target, "pull", "--progress", remote, req.Branch}
		okMsg = "Repository updated successfully."
	default:
		if _, err := os.Stat(target); os.IsNotExist(err) {
			createdTarget = true
		}
		s.emit(job, Event{Message: fmt.Sprintf("Cloning %s...", redact(req.RepoURL, req.Token))})
		args = []string{"clone", "--progress", "--branch", req.Branch, remote, target}
		okMsg = "Repository cloned successfully."
	}

	if err := s.runGit(ctx, job, req.Token, args...); err != nil {
		if createdTarget {
			// clone 中途失败会留下半个仓库，下次就会被误判为 pull
			_ = os.RemoveAll(target)
		}
		if ctx.Err() != nil {
			return Event{Message: "Cancelled.", Err: fmt.Errorf("%w: %s", ErrCancelled, job.Operation)}
		}
		return Event{Message: fmt.Sprintf("Git Error: %v", err), Err: err}
	}

	if job.Operation == OpClone && req.Token != "" {
		// 把 origin 还原成不带 token 的地址
		if err := s.runGit(ctx, job, req.Token, "-C", target, "remote", "set-url", "origin", req.RepoURL); err != nil {
			s.logger.Warn("failed to reset origin url", slog.String("job", job.ID), slog.Any("err", err))
		}
	}

	return Event{OK: true, Message: okMsg}
}

// runGit 执行 git，把 stderr 的进度行转成事件
func (s *Syncer) runGit(ctx context.Context, job *Job, token string, args ...string) error {
	cmd := exec.CommandContext(ctx, s.git, args...)
	// 禁止 git 弹出交互式的账号密码提示，否则会永远卡住
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	// 取消后 git 的子进程 (remote-https, index-pack) 可能还占着管道，最多再等这么久
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("failed to start git: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		waitErr <- err
	}()

	var lastLines []string
	sc := bufio.NewScanner(pr)
	sc.Split(scanProgressLines)
	for sc.Scan() {
		line := redact(strings.TrimSpace(sc.Text()), token)
		if line == "" {
			continue
		}
		if phase, pct, ok := parseProgress(line); ok {
			s.emit(job, Event{Phase: phase, Percent: &pct, Message: line})
			continue
		}
		s.emit(job, Event{Message: line})
		lastLines = append(lastLines, line)
		if len(lastLines) > 5 {
			lastLines = lastLines[1:]
		}
	}
	// Scanner 出错 (超长行) 时继续读空管道，否则 git 会被写阻塞
	_, _ = io.Copy(io.Discard, pr)

	if err := <-waitErr; err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(lastLines) > 0 {
			return fmt.Errorf("git %s: %s", args[firstVerb(args)], strings.Join(lastLines, "; "))
		}
		return err
	}
	return nil
}

// emit 非阻塞地推送进度事件；通道快满时丢弃，保证结束事件一定有位置
func (s *Syncer) emit(job *Job, e Event) {
	e.JobID = job.ID
	if len(job.events) >= cap(job.events)-1 {
		return
	}
	job.events <- e
}

// firstVerb 跳过 "-C <dir>" 找到子命令
func firstVerb(args []string) int {
	for i := 0; i < len(args); i++ {
		if args[i] == "-C" {
			i++
			continue
		}
		return i
	}
	return 0
}

// Revision 返回 dir 当前的 HEAD 提交
func (s *Syncer) Revision(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, s.git, "-C", dir, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD of %s: %w", dir, err)
	}
	return strings.TrimSpace(string(out)), nil
}
