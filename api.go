// Package pulse 统一API入口
//
// 进程内、同步分发的优先级事件总线：命名订阅与通配订阅、一次性订阅、
// 有界历史、快照与恢复。不提供包级默认 Bus，调用方自行持有实例。
package pulse

import (
	"github.com/uniyakcom/pulse/config"
	"github.com/uniyakcom/pulse/core"
	"github.com/uniyakcom/pulse/internal/emitter"
	"github.com/uniyakcom/pulse/store"
)

// Bus 导出Bus接口
type Bus = core.Bus

// Config 导出Bus配置
type Config = emitter.Config

// Event 导出Event类型
type Event = core.Event

// Handler 导出Handler类型
type Handler = core.Handler

// ErrorHandler 导出ErrorHandler类型
type ErrorHandler = core.ErrorHandler

// Options 导出Options
type Options = core.Options

// Priority 导出Priority
type Priority = core.Priority

type (
	Subscription   = core.Subscription
	Token          = core.Token
	WildcardConfig = core.WildcardConfig
	Filter         = core.Filter
	HistoryEntry   = core.HistoryEntry
	Snapshot       = core.Snapshot
	State          = core.State
	Stats          = core.Stats
	Join           = core.Join
	Pending        = core.Pending
	HandlerError   = core.HandlerError
	PanicError     = core.PanicError
)

const (
	PriorityCritical = core.PriorityCritical
	PriorityHigh     = core.PriorityHigh
	PriorityNormal   = core.PriorityNormal
	PriorityLow      = core.PriorityLow
)

// 过滤器构造
var (
	EventGlob     = core.EventGlob
	MustEventGlob = core.MustEventGlob
	EventIn       = core.EventIn
	Since         = core.Since
	Until         = core.Until
	Between       = core.Between
)

var (
	ErrInvalidArgument = core.ErrInvalidArgument
	ErrNoSubscribers   = core.ErrNoSubscribers
	ErrHandlerPanic    = core.ErrHandlerPanic
	ErrPoolClosed      = core.ErrPoolClosed
)

// ═══════════════════════════════════════════════════════════════════
// 第零层：New() 选项入口
// ═══════════════════════════════════════════════════════════════════

// New 创建 Bus，未传 opts 时使用 DefaultOptions()
//
// 用法:
//
//	bus, _ := pulse.New()
//	defer bus.Close()
func New(opts ...Options) (Bus, error) {
	cfg := emitter.DefaultConfig()
	if len(opts) > 0 {
		cfg.Options = opts[0]
	}
	return NewWithConfig(cfg)
}

// DefaultOptions 默认选项
func DefaultOptions() Options {
	return core.DefaultOptions()
}

// ═══════════════════════════════════════════════════════════════════
// 第一层：NewWithConfig() 完全控制
// ═══════════════════════════════════════════════════════════════════

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return emitter.DefaultConfig()
}

// NewWithConfig 使用完整配置创建 Bus（Logger、Workers、Now），cfg 为 nil 时使用默认配置
func NewWithConfig(cfg *Config) (Bus, error) {
	b, err := emitter.New(cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ═══════════════════════════════════════════════════════════════════
// 第二层：Load() 文件/环境变量配置
// ═══════════════════════════════════════════════════════════════════

// Load 从配置文件（path 为空时只读环境变量）创建 Bus，见 config.Load
func Load(path string) (Bus, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(FromConfig(c))
}

// LoadWithStore 同 Load，并在 store.path 非空时打开快照存储（否则 Store 为 nil）
//
// 用法:
//
//	bus, st, err := pulse.LoadWithStore("pulse.yaml")
//	if st != nil {
//		defer st.Close()
//		_ = st.Recover(ctx, bus)
//	}
func LoadWithStore(path string) (Bus, *store.Store, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	bus, err := NewWithConfig(FromConfig(c))
	if err != nil {
		return nil, nil, err
	}
	if c.Store.Path == "" {
		return bus, nil, nil
	}
	st, err := store.FromConfig(c.Store)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return bus, st, nil
}

// FromConfig 将文件配置转换为 Bus 配置（日志写 stderr）
func FromConfig(c *config.Config) *Config {
	return &Config{
		Options: c.Options(),
		Logger:  c.Logger(nil),
		Workers: c.Bus.Workers,
	}
}
