package emitter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/uniyakcom/pulse/core"
)

// Config 事件总线配置
type Config struct {
	// 行为选项
	Options core.Options

	// Logger 为 nil 时使用 slog.Default()
	Logger *slog.Logger

	// 异步工作池大小：0 每任务一个 goroutine，>0 使用 ants 固定池
	Workers int

	// Now 时钟（测试注入），nil 时使用 time.Now
	Now func() time.Time
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Options: core.DefaultOptions(),
		Workers: 0,
	}
}

// validate 校验并补全配置
func (c *Config) validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", core.ErrInvalidArgument, c.Workers)
	}
	c.Options = c.Options.Normalize()
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}
