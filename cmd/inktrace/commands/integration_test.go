package commands

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"inktrace/pkg/app"
	"inktrace/pkg/catalog"
	"inktrace/pkg/exporter"
	"inktrace/pkg/meta"
	"inktrace/pkg/refs"
	"inktrace/pkg/reposync"
	"inktrace/pkg/scanner"
	"inktrace/pkg/settings"
	"inktrace/pkg/storage/disk"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="1000" height="1000" viewBox="0 0 1000 1000"><path d="M 0 0 L 100 50"/></svg>`

// setupIntegrationEnv 搭建一个使用 真实文件系统 + sqlite 文件数据库 的集成环境
func setupIntegrationEnv(t *testing.T) *app.App {
	viper.Reset()

	// 1. 准备临时工作区
	ws := t.TempDir()
	objectsDir := filepath.Join(ws, "objects")
	require.NoError(t, os.MkdirAll(objectsDir, 0755))

	// 2. 真实的文件存储
	store, err := disk.NewAdapter(objectsDir)
	require.NoError(t, err)

	// 3. 元数据库
	db, err := meta.NewDB(context.Background(), meta.Config{Driver: "sqlite", Path: filepath.Join(ws, "index.db")})
	require.NoError(t, err)
	repo := meta.NewRepository(db)

	// 4. 历史记录
	st, err := settings.Load(filepath.Join(ws, "settings.json"), settings.Options{})
	require.NoError(t, err)

	// 5. 组装 App
	sc := scanner.New(scanner.Config{Workers: 2}, nil)
	refMgr := refs.NewManager(filepath.Join(ws, "refs"))
	application := &app.App{
		Workspace: ws,
		Logger:    discardLogger(),
		Store:     store,
		DB:        db,
		Meta:      repo,
		Refs:      refMgr,
		Settings:  st,
		Syncer:    reposync.New(reposync.Config{}, nil),
		Scanner:   sc,
		Catalog:   catalog.NewBuilder(sc, store, repo, refMgr, nil),
		Exporter:  exporter.NewExporter(0),
	}

	// 6. 注入全局变量 IT，测试结束后还原
	IT = application
	t.Cleanup(func() {
		db.Close()
		IT = nil
	})
	return application
}

// writeIconRepo 创建一个小图标库：中 有两个变体，文 一个，logo 无法解码
func writeIconRepo(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"glyphs/4E2D.svg":    squareSVG,
		"glyphs/4E2D-2.svg":  `<svg><path d="M 10 10 L 20 20"/></svg>`,
		"glyphs/uni6587.svg": `<svg viewBox="0 0 24 24"><path d="M 1 2 L 3 4"/></svg>`,
		"brand/logo.svg":     `<svg viewBox="0 0 16 16"><circle r="4"/></svg>`,
		"README.md":          "# icons",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

// run 直接调用 RunE 并捕获输出
func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	defer cmd.SetOut(nil)

	require.NoError(t, cmd.RunE(cmd, args), "output so far: %s", buf.String())
	return buf.String()
}

func TestIntegration_ScanListShow(t *testing.T) {
	a := setupIntegrationEnv(t)
	repo := writeIconRepo(t)

	// inktrace scan <repo>
	out := run(t, scanCmd, repo)
	assert.Contains(t, out, "found 4 SVGs in 3 groups")
	assert.Contains(t, out, "Snapshot ")

	// 快照、refs、数据库三处都要有记录
	cat, err := a.Catalog.Latest(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, 4, cat.AssetCount())
	rows, err := a.Meta.Search(context.Background(), repo, "", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	// inktrace list <repo>
	listSearch, listLimit, listSort, listRescan = "", 0, false, false
	out = run(t, listCmd, repo)
	assert.Contains(t, out, "中")
	assert.Contains(t, out, "文")
	assert.Contains(t, out, "logo")
	assert.Contains(t, out, "-2 -2 104 54", "main variant of 中 is the unsuffixed file")
	assert.Contains(t, out, "Showing 3 of 3 groups")

	// inktrace list --search brand
	listSearch = "BRAND"
	out = run(t, listCmd, repo)
	assert.Contains(t, out, "logo")
	assert.NotContains(t, out, "中")
	listSearch = ""

	// inktrace show 4E2D <repo>：十六进制也能找到 中
	showRescan = false
	out = run(t, showCmd, "4E2D", repo)
	assert.Contains(t, out, "Character: 中")
	assert.Contains(t, out, "U+4E2D")
	assert.Contains(t, out, "Variants:  2")
	assert.Contains(t, out, "glyphs/4E2D-2.svg")

	// 没有这个分组
	err = showCmd.RunE(showCmd, []string{"nope", repo})
	assert.ErrorContains(t, err, "no group named")
}

func TestIntegration_SearchAndLog(t *testing.T) {
	setupIntegrationEnv(t)
	repo := writeIconRepo(t)
	run(t, scanCmd, repo)

	searchDir, searchLimit = "", 0
	out := run(t, searchCmd, "中")
	assert.Contains(t, out, "4E2D.svg")
	assert.Contains(t, out, "4E2D-2.svg")
	assert.NotContains(t, out, "logo.svg")

	out = run(t, searchCmd, "does-not-exist")
	assert.Contains(t, out, "No SVGs match")

	// 再扫一次，log 里应该有记录 (内容没变时快照相同)
	logLimit = 20
	out = run(t, logCmd, repo)
	assert.Contains(t, out, "snapshot ")
	assert.Contains(t, out, "4 SVGs in 3 groups")
	assert.NotContains(t, out, "\033[", "no colour when not writing to a terminal")
}

func TestIntegration_FileEditedAfterScan(t *testing.T) {
	setupIntegrationEnv(t)
	repo := writeIconRepo(t)
	run(t, scanCmd, repo)

	// 扫描后改动 中 的主变体
	edited := `<svg><path d="M 10 10 L 20 30"/></svg>`
	require.NoError(t, os.WriteFile(filepath.Join(repo, "glyphs", "4E2D.svg"), []byte(edited), 0644))

	// 1. 默认读索引，显示的是扫描时的框
	showRescan = false
	out := run(t, showCmd, "中", repo)
	assert.Contains(t, out, "-2 -2 104 54")

	// 2. --rescan 重新扫描
	showRescan = true
	defer func() { showRescan = false }()
	out = run(t, showCmd, "中", repo)
	assert.Contains(t, out, "8 8 14 24")
	assert.NotContains(t, out, "-2 -2 104 54")

	// 3. 裁切总是按文件当前内容计算
	previewOut, previewDataURL, previewDir, previewRescan = "", false, repo, false
	defer func() { previewDir = "" }()
	out = run(t, previewCmd, "中")
	assert.Equal(t, `<svg viewBox="8 8 14 24"><path d="M 10 10 L 20 30"/></svg>`, out)
}

func TestIntegration_CatSnapshot(t *testing.T) {
	a := setupIntegrationEnv(t)
	repo := writeIconRepo(t)
	run(t, scanCmd, repo)

	cat, err := a.Catalog.Latest(context.Background(), repo)
	require.NoError(t, err)

	out := run(t, catCmd, cat.ID().Short())
	assert.Contains(t, out, "Type:      Catalog")
	assert.Contains(t, out, "Groups:    3")

	err = catCmd.RunE(catCmd, []string{"ab"})
	assert.Error(t, err, "prefix too short")
}

func TestIntegration_Preview(t *testing.T) {
	setupIntegrationEnv(t)
	repo := writeIconRepo(t)
	file := filepath.Join(repo, "glyphs", "4E2D.svg")

	// 1. 标准输出
	previewOut, previewDataURL, previewDir, previewRescan = "", false, "", false
	out := run(t, previewCmd, file)
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-2 -2 104 54"><path d="M 0 0 L 100 50"/></svg>`, out)

	// 2. data URL
	previewDataURL = true
	out = run(t, previewCmd, file)
	assert.True(t, strings.HasPrefix(out, "data:image/svg+xml;base64,"))
	previewDataURL = false

	// 3. 写文件
	previewOut = filepath.Join(t.TempDir(), "out.svg")
	run(t, previewCmd, file)
	data, err := os.ReadFile(previewOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), `viewBox="-2 -2 104 54"`)
	previewOut = ""

	// 4. 按字符查找
	previewDir = repo
	out = run(t, previewCmd, "文")
	assert.Contains(t, out, `viewBox="-1 0 6 6"`)
	previewDir = ""
}

func TestIntegration_Export(t *testing.T) {
	setupIntegrationEnv(t)
	repo := writeIconRepo(t)

	exportOut = filepath.Join(t.TempDir(), "cropped")
	exportSearch = "中"
	exportRescan = false
	defer func() { exportOut, exportSearch = "", "" }()

	out := run(t, exportCmd, repo)
	assert.Contains(t, out, "Exported 2 SVGs")
	assert.FileExists(t, filepath.Join(exportOut, "glyphs", "4E2D.svg"))
	assert.FileExists(t, filepath.Join(exportOut, "glyphs", "4E2D-2.svg"))
	assert.NoFileExists(t, filepath.Join(exportOut, "brand", "logo.svg"))
}

func TestIntegration_History(t *testing.T) {
	a := setupIntegrationEnv(t)

	historyUse = 0
	out := run(t, historyCmd)
	assert.Contains(t, out, "No sync history yet.")

	a.Settings.Remember(settings.Record{RepoURL: "https://example.com/a/icons.git", Branch: "main", DestinationFolder: "/tmp/x"})
	a.Settings.Remember(settings.Record{RepoURL: "https://example.com/b/emoji.git", Branch: "dev", DestinationFolder: "/tmp/y"})

	out = run(t, historyCmd)
	assert.NotContains(t, out, "\033[", "no colour when not writing to a terminal")
	assert.Less(t, strings.Index(out, "emoji.git"), strings.Index(out, "icons.git"), "most recent first")

	historyUse = 2
	defer func() { historyUse = 0 }()
	out = run(t, historyCmd)
	assert.Contains(t, out, "Now using https://example.com/a/icons.git")
	assert.Equal(t, "https://example.com/a/icons.git", a.Settings.Last().RepoURL)
	assert.FileExists(t, a.Settings.Path())

	historyUse = 5
	assert.Error(t, historyCmd.RunE(historyCmd, nil))
}

func TestBuildSyncRequest_FallsBackToLastUsed(t *testing.T) {
	a := setupIntegrationEnv(t)
	a.Settings.Remember(settings.Record{RepoURL: "https://example.com/a/icons.git", Branch: "dev", DestinationFolder: "/srv/repos"})

	syncBranch, syncDest, syncToken = "", "", ""
	req := buildSyncRequest(nil)
	assert.Equal(t, "https://example.com/a/icons.git", req.RepoURL)
	assert.Equal(t, "dev", req.Branch)
	assert.Equal(t, "/srv/repos", req.Destination)

	// 显式给出 URL 时，分支走配置默认值，目录沿用上次
	viper.Set("sync.branch", "main")
	req = buildSyncRequest([]string{"https://example.com/c/other.git"})
	assert.Equal(t, "https://example.com/c/other.git", req.RepoURL)
	assert.Equal(t, "main", req.Branch)
	assert.Equal(t, "/srv/repos", req.Destination)

	// token 来自环境/配置
	viper.Set("token", "secret")
	req = buildSyncRequest(nil)
	assert.Equal(t, "secret", req.Token)
}

func TestIntegration_SyncLocalRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	a := setupIntegrationEnv(t)

	// 1. 准备一个本地 "远程" 仓库
	origin := filepath.Join(t.TempDir(), "icons")
	require.NoError(t, os.MkdirAll(origin, 0755))
	gitT(t, origin, "init", "-q")
	gitT(t, origin, "checkout", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(origin, "4E2D.svg"), []byte(squareSVG), 0644))
	gitT(t, origin, "add", ".")
	gitT(t, origin, "-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "-m", "init")

	// 2. inktrace sync <origin> --dest <dest>
	dest := t.TempDir()
	syncBranch, syncDest, syncToken, syncNoScan = "main", dest, "", false
	defer func() { syncBranch, syncDest = "", "" }()

	out := run(t, syncCmd, origin)
	assert.Contains(t, out, "clone")
	assert.Contains(t, out, "found 1 SVGs in 1 groups")
	assert.FileExists(t, filepath.Join(dest, "icons", "4E2D.svg"))

	// 3. 记住了参数，快照带上了 revision
	last := a.Settings.Last()
	require.NotNil(t, last)
	assert.Equal(t, origin, last.RepoURL)
	assert.Equal(t, dest, last.DestinationFolder)

	cat, err := a.Catalog.Latest(context.Background(), filepath.Join(dest, "icons"))
	require.NoError(t, err)
	assert.Len(t, cat.Revision, 40)

	// 4. 第二次走 pull
	out = run(t, syncCmd)
	assert.Contains(t, out, "pull")
	assert.Contains(t, out, "Repository updated successfully.")

	// 5. 不带参数时默认操作上次的仓库
	listSearch, listLimit, listSort, listRescan = "", 0, false, false
	out = run(t, listCmd)
	assert.Contains(t, out, "中")
}

func gitT(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}
