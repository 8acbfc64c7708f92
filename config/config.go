// Package config 从文件与环境变量加载事件总线配置（viper）
//
// 优先级：环境变量（PULSE_ 前缀，如 PULSE_BUS_MAX_HISTORY_SIZE）> 配置文件 > 默认值。
// 支持 viper 识别的全部文件格式（yaml/json/toml ...）。
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/uniyakcom/pulse/core"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "PULSE"

// Config 顶层配置
type Config struct {
	Bus   BusConfig   `mapstructure:"bus"`
	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
}

// BusConfig 总线行为
type BusConfig struct {
	AsyncEventHandling bool `mapstructure:"async_event_handling"`
	CatchErrors        bool `mapstructure:"catch_errors"`
	AllowEmptyEvents   bool `mapstructure:"allow_empty_events"`
	MaxHistorySize     int  `mapstructure:"max_history_size"`
	// Workers 异步工作池大小，0 每任务一个 goroutine
	Workers int `mapstructure:"workers"`
}

// LogConfig 日志
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// StoreConfig 快照存储，Path 为空时不启用
type StoreConfig struct {
	Path  string `mapstructure:"path"`
	Label string `mapstructure:"label"`
}

// Default 默认配置
func Default() *Config {
	opts := core.DefaultOptions()
	return &Config{
		Bus: BusConfig{
			AsyncEventHandling: opts.AsyncEventHandling,
			CatchErrors:        opts.CatchErrors,
			AllowEmptyEvents:   opts.AllowEmptyEvents,
			MaxHistorySize:     opts.MaxHistorySize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Label: "default",
		},
	}
}

// SetDefaults 在 v 上注册默认值
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("bus.async_event_handling", defaults.Bus.AsyncEventHandling)
	v.SetDefault("bus.catch_errors", defaults.Bus.CatchErrors)
	v.SetDefault("bus.allow_empty_events", defaults.Bus.AllowEmptyEvents)
	v.SetDefault("bus.max_history_size", defaults.Bus.MaxHistorySize)
	v.SetDefault("bus.workers", defaults.Bus.Workers)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("store.label", defaults.Store.Label)
}

// Load 读取 path 处的配置文件（为空时只用默认值与环境变量）并校验
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Options 转换为总线选项（OnError 由调用方设置）
func (c *Config) Options() core.Options {
	return core.Options{
		AsyncEventHandling: c.Bus.AsyncEventHandling,
		CatchErrors:        c.Bus.CatchErrors,
		AllowEmptyEvents:   c.Bus.AllowEmptyEvents,
		MaxHistorySize:     c.Bus.MaxHistorySize,
	}.Normalize()
}

// Logger 按日志配置创建写入 w 的 logger，w 为 nil 时写 stderr
func (c *Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: parseLevel(c.Log.Level)}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// IsValidationError err 是否为配置校验错误
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
