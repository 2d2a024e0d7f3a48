package reposync

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

// git --progress 输出形如 "Receiving objects:  45% (450/1000), 1.2 MiB | 3 MiB/s"
var progressPattern = regexp.MustCompile(`^(?:remote:\s*)?([A-Za-z][A-Za-z ]*?):\s+(\d{1,3})%`)

// parseProgress 从一行 git 输出中提取阶段和百分比
func parseProgress(line string) (phase string, percent int, ok bool) {
	m := progressPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", 0, false
	}
	p, err := strconv.Atoi(m[2])
	if err != nil || p > 100 {
		return "", 0, false
	}
	return m[1], p, true
}

// scanProgressLines 按 '\r' 或 '\n' 切分，git 用 '\r' 原地刷新进度
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = scanProgressLines
