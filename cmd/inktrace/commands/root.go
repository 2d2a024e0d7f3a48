package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"inktrace/pkg/app"
	"inktrace/pkg/config"
	"inktrace/pkg/logging"
	"inktrace/pkg/reposync"
	"inktrace/pkg/settings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	IT *app.App
)

var rootCmd = &cobra.Command{
	Use:           "inktrace",
	Short:         "InkTrace: browse SVG glyph repositories by character",
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.Setup(os.Stderr, viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", slog.String("path", used))
		}

		// init 就是去创建环境的，不需要依赖
		if cmd.Name() == "init" {
			return nil
		}
		// 测试里会预先注入
		if IT != nil {
			return nil
		}

		IT, err = app.NewApp(ctxOf(cmd), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize inktrace: %w\n(Did you run 'inktrace init'?)", err)
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	start := time.Now()
	cmd, err := rootCmd.ExecuteC()

	if IT != nil {
		name := rootCmd.Name()
		if cmd != nil {
			name = cmd.Name()
		}
		logging.LogOp(IT.Logger, "command", name, time.Since(start), err)
		if cerr := IT.Close(); cerr != nil {
			slog.Warn("failed to close app", slog.Any("err", cerr))
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// 1. 全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.inktrace/config.yaml)")

	// 2. 工作区和日志级别，也可以写在 yaml 里或用环境变量覆盖
	rootCmd.PersistentFlags().String("workspace", "", "Directory for snapshots, refs and history (default $HOME/.inktrace)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	mustBind("workspace", "workspace")
	mustBind("log.level", "log-level")
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Config error:", err)
		os.Exit(1)
	}
}

// ctxOf 直接调用 RunE 时 cmd 没有 context
func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// targetOf 返回一条历史记录对应的本地仓库目录
func targetOf(rec settings.Record) string {
	return filepath.Join(rec.DestinationFolder, reposync.RepoName(rec.RepoURL))
}

// resolveRoot 决定要操作的目录：参数 > 最近一次同步的仓库 > 当前目录
func resolveRoot(args []string, i int) (string, error) {
	if len(args) > i && args[i] != "" {
		return filepath.Abs(args[i])
	}
	if IT != nil && IT.Settings != nil {
		if last := IT.Settings.Last(); last != nil {
			dir := targetOf(*last)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir, nil
			}
		}
	}
	return os.Getwd()
}
