// Package emitter 提供同步优先级事件总线实现
//
// 订阅、退订与 Emit 约定由同一逻辑调用方串行执行；内部互斥锁只保护
// 注册表与历史，handler 始终在锁外运行，因此 handler 内可重入调用
// Subscribe/Unsubscribe/Emit，且不影响进行中的分发。
package emitter

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uniyakcom/pulse/core"
	"github.com/uniyakcom/pulse/internal/history"
	"github.com/uniyakcom/pulse/internal/registry"
	"github.com/uniyakcom/pulse/internal/support/wpool"
)

// Bus 同步事件总线
type Bus struct {
	// === 注册表与历史（mu 保护） ===
	mu      sync.Mutex
	named   *registry.Registry
	wild    *registry.Wildcards
	history *history.Ring
	opts    core.Options

	// === 只读依赖 ===
	logger  *slog.Logger
	now     func() time.Time
	workers *wpool.Pool

	nextTok atomic.Uint64

	// === 运行时统计 ===
	emitted atomic.Int64
	invoked atomic.Int64
	failed  atomic.Int64
	panics  atomic.Int64

	inflight atomic.Int64
}

var _ core.Bus = (*Bus)(nil)

// New 使用配置创建事件总线，cfg 为 nil 时使用 DefaultConfig()
func New(cfg *Config) (*Bus, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.validate(); err != nil {
		return nil, err
	}
	pool, err := wpool.New(c.Workers)
	if err != nil {
		return nil, err
	}
	return &Bus{
		named:   registry.New(),
		wild:    registry.NewWildcards(),
		history: history.New(c.Options.MaxHistorySize),
		opts:    c.Options,
		logger:  c.Logger,
		now:     c.Now,
		workers: pool,
	}, nil
}

// Subscribe 订阅命名事件
func (b *Bus) Subscribe(name string, handler core.Handler, priority ...core.Priority) (*core.Subscription, error) {
	return b.subscribe(name, handler, core.PickPriority(priority...), false)
}

// Once 订阅命名事件，首次调用后移除（调用即触发，不论成功与否）
func (b *Bus) Once(name string, handler core.Handler, priority ...core.Priority) (*core.Subscription, error) {
	return b.subscribe(name, handler, core.PickPriority(priority...), true)
}

func (b *Bus) subscribe(name string, handler core.Handler, p core.Priority, once bool) (*core.Subscription, error) {
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}
	if err := core.ValidateHandler(handler); err != nil {
		return nil, err
	}
	rec := &registry.Record{
		Token:    core.Token(b.nextTok.Add(1)),
		Name:     name,
		Handler:  handler,
		Priority: p,
		Once:     once,
	}

	b.mu.Lock()
	b.named.Add(rec)
	b.mu.Unlock()

	b.logger.Debug("handler subscribed", "event", name, "token", rec.Token, "priority", p, "once", once)
	return core.NewSubscription(rec.Token, name, false, b.Off), nil
}

// SubscribeToAll 通配订阅
func (b *Bus) SubscribeToAll(handler core.Handler, cfg ...core.WildcardConfig) (*core.Subscription, error) {
	var c core.WildcardConfig
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return b.subscribeAll(handler, c)
}

// OnceToAll 通配订阅，首次调用后移除
func (b *Bus) OnceToAll(handler core.Handler, cfg ...core.WildcardConfig) (*core.Subscription, error) {
	var c core.WildcardConfig
	if len(cfg) > 0 {
		c = cfg[0]
	}
	c.Once = true
	return b.subscribeAll(handler, c)
}

func (b *Bus) subscribeAll(handler core.Handler, c core.WildcardConfig) (*core.Subscription, error) {
	if err := core.ValidateHandler(handler); err != nil {
		return nil, err
	}
	rec := &registry.Record{
		Token:    core.Token(b.nextTok.Add(1)),
		Handler:  handler,
		Priority: c.Priority.OrDefault(),
		Once:     c.Once,
		Filter:   c.Filter,
	}

	b.mu.Lock()
	b.wild.Add(rec)
	b.mu.Unlock()

	b.logger.Debug("wildcard handler subscribed", "token", rec.Token, "priority", rec.Priority, "once", rec.Once)
	return core.NewSubscription(rec.Token, "", true, b.Off), nil
}

// Unsubscribe 不带 handler 时移除整个事件桶，带 handler 时移除首个同一函数的订阅
//
// 函数同一性按代码指针判断（同一函数字面量产生的闭包视为相同），
// 需要精确移除时使用 Off 或 Subscription.Unsubscribe。
func (b *Bus) Unsubscribe(name string, handler ...core.Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(handler) == 0 || handler[0] == nil {
		n := b.named.Count(name)
		ok := b.named.RemoveBucket(name)
		b.logger.Debug("event unsubscribed", "event", name, "removed", n)
		return ok
	}
	return b.named.RemoveHandler(name, handler[0])
}

// UnsubscribeFromAll 移除首个同一函数的通配订阅
func (b *Bus) UnsubscribeFromAll(handler core.Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.wild.RemoveHandler(handler)
}

// Off 按令牌取消订阅
func (b *Bus) Off(tok core.Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(tok)
}

func (b *Bus) removeLocked(tok core.Token) bool {
	if b.named.Remove(tok) {
		return true
	}
	return b.wild.Remove(tok)
}

// ListenerCount 事件的命名订阅数
func (b *Bus) ListenerCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.named.Count(name)
}

// EventNames 已注册的事件名（升序）
func (b *Bus) EventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.named.Names()
}

// WildcardListenerCount 通配订阅数
func (b *Bus) WildcardListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.wild.Count()
}

// HasListeners 事件是否有命名订阅
func (b *Bus) HasListeners(name string) bool {
	return b.ListenerCount(name) > 0
}

// Clear 清空全部订阅与历史（选项保留）
func (b *Bus) Clear() {
	b.mu.Lock()
	b.named.Reset()
	b.wild.Reset()
	b.history.Reset()
	b.mu.Unlock()

	b.logger.Debug("bus cleared")
}

// History 从旧到新的历史副本
func (b *Bus) History() []core.HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.Entries()
}

// QueryHistory 按过滤器（含 Timestamp 谓词）查询历史
func (b *Bus) QueryHistory(f *core.Filter) []core.HistoryEntry {
	entries := b.History()
	out := entries[:0]
	for _, e := range entries {
		if f.MatchEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

// ClearHistory 清空历史
func (b *Bus) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.Reset()
}

// State 状态摘要
func (b *Bus) State() core.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return core.State{
		EventCount:     len(b.named.Names()),
		TotalListeners: b.named.Total() + b.wild.Count(),
		HistorySize:    b.history.Len(),
		Options:        b.opts,
	}
}

// Stats 运行时统计
func (b *Bus) Stats() core.Stats {
	return core.Stats{
		Emitted: b.emitted.Load(),
		Invoked: b.invoked.Load(),
		Failed:  b.failed.Load(),
		Panics:  b.panics.Load(),

		Pending:        b.inflight.Load(),
		WorkersRunning: b.workers.Running(),
		WorkersCap:     b.workers.Cap(),
	}
}

// Close 释放异步工作池；之后 evt.Go 返回以 core.ErrPoolClosed 失败的 Pending
func (b *Bus) Close() {
	b.workers.Release()
}
