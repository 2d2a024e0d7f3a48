package reposync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOrigin 创建一个带一次提交的本地仓库，作为 clone 的源
func newOrigin(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := filepath.Join(t.TempDir(), "origin")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "glyphs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glyphs", "4E2D.svg"), []byte(`<svg><path d="M0 0 L10 10"/></svg>`), 0644))

	gitCmd(t, dir, "init", "-q")
	gitCmd(t, dir, "checkout", "-q", "-b", "main")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "-m", "init")
	return dir
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

// drain 读完事件流，返回所有事件
func drain(t *testing.T, job *Job) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(60 * time.Second)
	for {
		select {
		case e, ok := <-job.Events():
			if !ok {
				return events
			}
			events = append(events, e)
		case <-timeout:
			t.Fatal("sync did not finish in time")
		}
	}
}

func TestSyncer_CloneThenPull(t *testing.T) {
	origin := newOrigin(t)
	dest := t.TempDir()
	s := New(Config{}, nil)
	ctx := context.Background()

	// 1. 第一次：clone
	job, err := s.Start(ctx, Request{RepoURL: origin, Destination: dest})
	require.NoError(t, err)
	assert.Equal(t, OpClone, job.Operation)
	assert.Equal(t, filepath.Join(dest, "origin"), job.TargetDirectory)

	events := drain(t, job)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.True(t, last.Done)
	assert.True(t, last.OK, last.Message)
	assert.Equal(t, "Repository cloned successfully.", last.Message)
	assert.Equal(t, job.ID, last.JobID)
	for _, e := range events[:len(events)-1] {
		assert.False(t, e.Done, "only the last event is terminal")
		assert.Equal(t, job.ID, e.JobID)
	}
	assert.FileExists(t, filepath.Join(dest, "origin", "glyphs", "4E2D.svg"))
	assert.False(t, s.Cancel(job.ID), "finished jobs are forgotten")

	// 2. 第二次：目标已是仓库 -> pull
	job, err = s.Start(ctx, Request{RepoURL: origin, Destination: dest, Branch: "main"})
	require.NoError(t, err)
	assert.Equal(t, OpPull, job.Operation)

	final := job.Wait()
	assert.True(t, final.OK, final.Message)
	assert.Equal(t, "Repository updated successfully.", final.Message)

	// 3. HEAD 与源一致
	rev, err := s.Revision(ctx, job.TargetDirectory)
	require.NoError(t, err)
	want, err := s.Revision(ctx, origin)
	require.NoError(t, err)
	assert.Equal(t, want, rev)
	assert.Len(t, rev, 40)
}

func TestSyncer_CloneFailureRemovesTarget(t *testing.T) {
	origin := newOrigin(t)
	dest := t.TempDir()
	s := New(Config{}, nil)

	job, err := s.Start(context.Background(), Request{RepoURL: origin, Destination: dest, Branch: "no-such-branch"})
	require.NoError(t, err)

	final := job.Wait()
	assert.True(t, final.Done)
	assert.False(t, final.OK)
	assert.Error(t, final.Err)
	assert.True(t, strings.HasPrefix(final.Message, "Git Error:"), final.Message)
	assert.NoDirExists(t, job.TargetDirectory)
}

func TestSyncer_RejectsNonRepository(t *testing.T) {
	dest := t.TempDir()
	target := filepath.Join(dest, "icons")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "a.svg"), []byte("<svg/>"), 0644))

	s := New(Config{}, nil)
	job, err := s.Start(context.Background(), Request{RepoURL: "https://example.com/acme/icons.git", Destination: dest})

	assert.Nil(t, job)
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestSyncer_InvalidRequest(t *testing.T) {
	s := New(Config{}, nil)
	_, err := s.Start(context.Background(), Request{Destination: t.TempDir()})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSyncer_CancelledBeforeStart(t *testing.T) {
	origin := newOrigin(t)
	s := New(Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job, err := s.Start(ctx, Request{RepoURL: origin, Destination: t.TempDir()})
	require.NoError(t, err)

	final := job.Wait()
	assert.False(t, final.OK)
	assert.Equal(t, "Cancelled.", final.Message)
	assert.ErrorIs(t, final.Err, ErrCancelled)
	assert.NoDirExists(t, job.TargetDirectory)
}

func TestSyncer_CancelUnknownJob(t *testing.T) {
	s := New(Config{}, nil)
	assert.False(t, s.Cancel("missing"))
}

func TestSyncer_MissingGitBinary(t *testing.T) {
	s := New(Config{GitBinary: filepath.Join(t.TempDir(), "no-git")}, nil)

	job, err := s.Start(context.Background(), Request{RepoURL: "https://example.com/a/icons", Destination: t.TempDir()})
	require.NoError(t, err)

	final := job.Wait()
	assert.False(t, final.OK)
	assert.Contains(t, final.Message, "failed to start git")
}
