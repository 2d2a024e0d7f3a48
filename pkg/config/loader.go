package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 是环境变量前缀，例如 INKTRACE_TOKEN、INKTRACE_CACHE_REDIS_URL
const EnvPrefix = "INKTRACE"

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
// 返回实际使用的配置文件，没有则为空串
func Load(cfgFile string) (string, error) {
	// 1. .env 里的变量先注入进程环境，已有的环境变量不会被覆盖
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read .env: %w", err)
	}

	// 2. 默认值
	if err := setDefaults(); err != nil {
		return "", err
	}

	// 3. 搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		// 当前目录 > ./.inktrace > ~/.inktrace
		viper.AddConfigPath(".")
		viper.AddConfigPath(".inktrace")
		viper.AddConfigPath(filepath.Join(home, ".inktrace"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 4. 环境变量：cache.redis_url -> INKTRACE_CACHE_REDIS_URL
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 5. 配置文件；没找到不算错，格式错才是错
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return "", nil
		}
		return "", fmt.Errorf("fatal error config file: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}

func setDefaults() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to locate home dir: %w", err)
	}
	workspace := filepath.Join(home, ".inktrace")

	// 工作区：快照、引用、索引库、历史记录都在这里
	viper.SetDefault("workspace", workspace)

	// 存储
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("cache.ttl", 24*time.Hour)

	// 元数据库
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "inktrace")
	viper.SetDefault("database.sslmode", "disable")

	// 历史记录
	viper.SetDefault("settings.history_limit", 20)
	viper.SetDefault("settings.persist_token", false)

	// 扫描
	viper.SetDefault("scan.workers", 8)
	viper.SetDefault("scan.max_file_bytes", 4<<20)

	// 同步
	viper.SetDefault("git.binary", "git")
	viper.SetDefault("sync.branch", "main")

	// 日志
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")
	return nil
}

// Workspace 返回工作区目录
func Workspace() string {
	return viper.GetString("workspace")
}

// PathOr 读取路径类配置，没有设置时返回工作区下的默认位置
func PathOr(key string, elem ...string) string {
	if p := viper.GetString(key); p != "" {
		return p
	}
	return filepath.Join(append([]string{Workspace()}, elem...)...)
}
