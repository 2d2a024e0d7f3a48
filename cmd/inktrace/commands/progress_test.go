package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"inktrace/pkg/reposync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v int) *int { return &v }

func TestProgressPrinter_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.Print(reposync.Event{Message: "Cloning icons..."})
	p.Print(reposync.Event{Phase: "Receiving objects", Percent: pct(42)})
	p.Print(reposync.Event{Phase: "Receiving objects", Percent: pct(100)})
	p.Print(reposync.Event{Done: true, OK: true})

	assert.Equal(t, "   Cloning icons...\n   Receiving objects 100%\n", buf.String())
}

func TestProgressPrinter_TTYRewritesLine(t *testing.T) {
	var buf bytes.Buffer
	p := &progressPrinter{w: &buf, tty: true}

	p.Print(reposync.Event{Phase: "Receiving objects", Percent: pct(5)})
	p.Print(reposync.Event{Phase: "Resolving deltas", Percent: pct(100)})
	p.Print(reposync.Event{Done: true})

	out := buf.String()
	assert.Contains(t, out, "\r⏳ Receiving objects   5%")
	assert.Contains(t, out, "\r⏳ Resolving deltas 100%")
	assert.NotContains(t, out, "\n")
	assert.Zero(t, p.lastLen)
}

func TestYellow_OnlyOnTerminal(t *testing.T) {
	assert.Equal(t, "snapshot", yellow(&bytes.Buffer{}, "snapshot"))

	// 普通文件也不是终端
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
	assert.Equal(t, "snapshot", yellow(f, "snapshot"))
}
