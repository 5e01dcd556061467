package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`     // 服务器配置
	Database   DatabaseConfig   `mapstructure:"database"`   // 数据库配置
	Log        LogConfig        `mapstructure:"log"`        // 日志配置
	Sync       SyncConfig       `mapstructure:"sync"`       // 同步调度配置
	MySideline MySidelineConfig `mapstructure:"mysideline"` // MySideline 采集源配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogLevel        string        `mapstructure:"log_level"`         // GORM日志级别：silent/error/warn/info
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // 启动时自动建表
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // logrus级别
	Format string `mapstructure:"format"` // text/json
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	Enabled         bool          `mapstructure:"enabled"`           // 总开关，关闭则跳过同步
	UseMock         bool          `mapstructure:"use_mock"`          // 使用内置模拟数据代替真实采集
	Cron            string        `mapstructure:"cron"`              // 定时同步Cron表达式（含秒）
	MinInterval     time.Duration `mapstructure:"min_interval"`      // 两次成功同步的最小间隔
	StaleRunTimeout time.Duration `mapstructure:"stale_run_timeout"` // started 状态超过该时长视为已失效
	RunOnStartup    bool          `mapstructure:"run_on_startup"`    // 启动时执行一次初始同步
	Workers         int           `mapstructure:"workers"`           // 单批次并发处理数，1为顺序处理
	DeactivatePast  bool          `mapstructure:"deactivate_past"`   // 同步结束后停用过期嘉年华
	Timezone        string        `mapstructure:"timezone"`          // 带时差时间戳换算日期所用的时区
}

// MySidelineConfig MySideline 采集源配置
type MySidelineConfig struct {
	BaseURL    string `mapstructure:"base_url"`    // API基础地址
	SearchPath string `mapstructure:"search_path"` // 搜索接口路径
	Criteria   string `mapstructure:"criteria"`    // 搜索关键字，如 Masters
	Source     string `mapstructure:"source"`      // 运动来源，如 rugby-league
	Timeout    int    `mapstructure:"timeout"`     // 请求超时（秒）
	RetryCount int    `mapstructure:"retry_count"` // 重试次数
	Proxy      string `mapstructure:"proxy"`       // 代理地址
	UserAgent  string `mapstructure:"user_agent"`  // 请求UA
}

// SourceName 当前配置对应的采集源名称
func (s *SyncConfig) SourceName() string {
	if s.UseMock {
		return "mysideline-mock"
	}
	return "mysideline"
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env 可不存在

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.use_mock", false)
	v.SetDefault("sync.cron", "0 0 3 * * *")
	v.SetDefault("sync.min_interval", 24*time.Hour)
	v.SetDefault("sync.stale_run_timeout", time.Hour)
	v.SetDefault("sync.run_on_startup", true)
	v.SetDefault("sync.workers", 1)
	v.SetDefault("sync.deactivate_past", true)
	v.SetDefault("sync.timezone", "Australia/Sydney")
	v.SetDefault("mysideline.base_url", "https://profile.mysideline.com.au")
	v.SetDefault("mysideline.search_path", "/api/v1/register/clubsearch")
	v.SetDefault("mysideline.criteria", "Masters")
	v.SetDefault("mysideline.source", "rugby-league")
	v.SetDefault("mysideline.timeout", 30)
	v.SetDefault("mysideline.retry_count", 2)
	v.SetDefault("mysideline.user_agent", "CarnivalSync/1.0")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("MYSIDELINE_BASE_URL"); v != "" {
		cfg.MySideline.BaseURL = v
	}
	if v := os.Getenv("MYSIDELINE_PROXY"); v != "" {
		cfg.MySideline.Proxy = v
	}
	if v, err := strconv.ParseBool(os.Getenv("MYSIDELINE_SYNC_ENABLED")); err == nil {
		cfg.Sync.Enabled = v
	}
	if v, err := strconv.ParseBool(os.Getenv("USE_MOCK_MYSIDELINE")); err == nil {
		cfg.Sync.UseMock = v
	}
}

// GormLogLevel 将配置的日志级别映射到 GORM 日志级别
func (d *DatabaseConfig) GormLogLevel() logger.LogLevel {
	switch d.LogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
