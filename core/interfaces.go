// Package core 提供事件总线核心接口与类型定义
package core

import (
	"context"
	"time"
)

// Handler 事件处理器
//
// 返回的 error 视为同步失败；异步工作通过 evt.Go / evt.Track 提交。
type Handler func(evt *Event) error

// ErrorHandler 错误回调（CatchErrors=true 时接收 handler 错误）
type ErrorHandler func(err error, event string)

// HistoryEntry 历史记录条目（Data 按引用保存，不做深拷贝）
type HistoryEntry struct {
	Name      string    `json:"name" yaml:"name"`
	Data      any       `json:"data" yaml:"data"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// WildcardConfig 通配订阅配置
// Priority 零值视为 PriorityNormal；Filter 为 nil 时接收全部事件。
type WildcardConfig struct {
	Priority Priority
	Filter   *Filter
	Once     bool
}

// Stats 运行时统计
type Stats struct {
	Emitted int64 // Emit 调用次数（含无订阅者）
	Invoked int64 // handler 调用次数
	Failed  int64 // handler 失败次数（含 panic 与异步失败）
	Panics  int64 // handler panic 次数

	Pending        int64 // 已登记、尚未完成的异步工作
	WorkersRunning int   // 工作池中运行中的 worker（goroutine 模式为 0）
	WorkersCap     int   // 工作池容量（goroutine 模式为 0）
}

// State 总线状态摘要
type State struct {
	EventCount     int
	TotalListeners int // 命名订阅 + 通配订阅
	HistorySize    int
	Options        Options
}

// Bus 事件总线接口
type Bus interface {
	// Subscribe 订阅命名事件，priority 缺省为 PriorityNormal
	Subscribe(name string, handler Handler, priority ...Priority) (*Subscription, error)

	// Once 订阅命名事件，首次调用后自动移除
	Once(name string, handler Handler, priority ...Priority) (*Subscription, error)

	// SubscribeToAll 订阅全部事件（可带过滤器）
	SubscribeToAll(handler Handler, cfg ...WildcardConfig) (*Subscription, error)

	// OnceToAll 通配订阅，首次调用后自动移除
	OnceToAll(handler Handler, cfg ...WildcardConfig) (*Subscription, error)

	// Unsubscribe 不带 handler 时移除整个事件桶；带 handler 时移除首个同一函数的订阅
	Unsubscribe(name string, handler ...Handler) bool

	// UnsubscribeFromAll 移除首个同一函数的通配订阅
	UnsubscribeFromAll(handler Handler) bool

	// Off 按令牌取消订阅（命名或通配）
	Off(token Token) bool

	// Emit 发布事件
	Emit(name string, data any) (*Join, error)

	// EmitContext 发布事件，ctx 传递给异步工作与 Join
	EmitContext(ctx context.Context, name string, data any) (*Join, error)

	ListenerCount(name string) int
	EventNames() []string
	WildcardListenerCount() int
	HasListeners(name string) bool

	// Clear 清空全部订阅与历史
	Clear()

	History() []HistoryEntry
	QueryHistory(f *Filter) []HistoryEntry
	ClearHistory()

	Snapshot() *Snapshot
	RestoreFromSnapshot(s *Snapshot) error

	State() State
	Stats() Stats

	// Close 释放异步 worker 池
	Close()
}
