package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"inktrace/pkg/reposync"

	"golang.org/x/term"
)

// progressPrinter 把同步事件渲染到终端
// TTY 下原地刷新一行；重定向到文件时只输出阶段完成和普通消息
type progressPrinter struct {
	w       io.Writer
	tty     bool
	lastLen int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, tty: isTerminal(w)}
}

// isTerminal 只有直接写终端时才输出 \r 刷新和颜色
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// yellow 在终端里给文字上色，重定向时原样返回
func yellow(w io.Writer, s string) string {
	if !isTerminal(w) {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (p *progressPrinter) Print(e reposync.Event) {
	if e.Done {
		p.clear()
		return
	}

	if e.Percent == nil {
		p.clear()
		fmt.Fprintf(p.w, "   %s\n", e.Message)
		return
	}

	line := fmt.Sprintf("%s %3d%%", e.Phase, *e.Percent)
	if p.tty {
		pad := ""
		if n := p.lastLen - len(line); n > 0 {
			pad = strings.Repeat(" ", n)
		}
		fmt.Fprintf(p.w, "\r⏳ %s%s", line, pad)
		p.lastLen = len(line)
		return
	}
	if *e.Percent == 100 {
		fmt.Fprintf(p.w, "   %s\n", line)
	}
}

// clear 擦掉 TTY 下正在刷新的那一行
func (p *progressPrinter) clear() {
	if !p.tty || p.lastLen == 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.lastLen+3))
	p.lastLen = 0
}
