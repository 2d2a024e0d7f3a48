package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"inktrace/pkg/config"

	"github.com/spf13/cobra"
)

const configTemplate = `# inktrace 配置，环境变量 INKTRACE_<KEY> 优先 (点换成下划线)
log:
  level: warn
  format: text

storage:
  type: disk # disk | s3

# s3:
#   endpoint: http://localhost:9000
#   bucket: inktrace
#   access_key: ""
#   secret_key: ""

# cache:
#   redis_url: redis://localhost:6379/0
#   ttl: 24h

database:
  driver: sqlite # sqlite | postgres

scan:
  workers: 8
  # ignore:
  #   - "dist/"

sync:
  branch: main

settings:
  history_limit: 20
  persist_token: false
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the inktrace workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ws := config.Workspace()

		// 1. 检查是否已经初始化
		if _, err := os.Stat(filepath.Join(ws, "objects")); err == nil {
			fmt.Fprintf(out, "⚠️  Workspace already exists at %s\n", ws)
			return nil
		}

		// 2. 创建目录结构
		for _, dir := range []string{"objects", "refs"} {
			if err := os.MkdirAll(filepath.Join(ws, dir), 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}

		// 3. 写入配置模板，已有配置不覆盖
		cfgPath := filepath.Join(ws, "config.yaml")
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		}

		fmt.Fprintf(out, "✅ Initialized inktrace workspace in %s\n", ws)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
