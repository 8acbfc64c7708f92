package emitter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/uniyakcom/pulse/core"
	"github.com/uniyakcom/pulse/internal/registry"
)

// Emit 发布事件，见 EmitContext
func (b *Bus) Emit(name string, data any) (*core.Join, error) {
	return b.EmitContext(context.Background(), name, data)
}

// EmitContext 发布事件
//
// 顺序：校验事件名 → 写历史 → 解析命名桶与通过过滤的通配订阅 →
// 命名 handler 先于通配 handler 依次同步调用 → 移除本轮已调用的 once 订阅 →
// 启用异步处理且有异步工作时返回 Join。
//
// 本轮使用注册表的副本，handler 内的订阅变更只影响后续 Emit。
func (b *Bus) EmitContext(ctx context.Context, name string, data any) (*core.Join, error) {
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	b.emitted.Add(1)
	ts := b.now()

	b.mu.Lock()
	b.history.Append(core.HistoryEntry{Name: name, Data: data, Timestamp: ts})
	named := b.named.Bucket(name)
	wild := b.wild.Records()
	opts := b.opts
	b.mu.Unlock()

	// Filter 为用户代码，锁外求值；panic 按 handler 错误策略处理
	var filterErr error
	wild = registry.Match(wild, name, data, func(rec *registry.Record, err error) {
		herr := b.fail(name, rec.Token, err)
		if opts.CatchErrors {
			b.report(opts, herr, name)
		} else if filterErr == nil {
			filterErr = herr
		}
	})
	if filterErr != nil {
		return nil, filterErr
	}
	if len(named)+len(wild) == 0 {
		if !opts.AllowEmptyEvents {
			return nil, fmt.Errorf("%w: event %q", core.ErrNoSubscribers, name)
		}
		return nil, nil
	}

	tr := &tracker{bus: b, event: name, async: opts.AsyncEventHandling, opts: opts}
	evt := core.NewEvent(ctx, name, data, ts, nil)

	var fired []core.Token
	var runErr error
	for _, list := range [2][]*registry.Record{named, wild} {
		for _, rec := range list {
			if !rec.Claim() {
				continue // once 订阅已在嵌套 Emit 中触发
			}
			if rec.Once {
				fired = append(fired, rec.Token)
			}
			err := b.invoke(rec, evt.WithTracker(tr.bind(rec.Token)))
			if err == nil {
				continue
			}
			if opts.CatchErrors {
				b.report(opts, err, name)
				continue
			}
			runErr = err
			break
		}
		if runErr != nil {
			break
		}
	}

	pending := tr.seal(runErr == nil)
	b.prune(fired)

	if runErr != nil {
		return nil, runErr
	}
	if !opts.AsyncEventHandling || len(pending) == 0 {
		return nil, nil
	}
	return core.NewJoin(ctx, pending), nil
}

// invoke 调用 handler，error 与 panic 均包装为 *core.HandlerError
func (b *Bus) invoke(rec *registry.Record, evt *core.Event) error {
	b.invoked.Add(1)
	err := core.Run(evt.Context(), func(context.Context) error { return rec.Handler(evt) })
	if err == nil {
		return nil
	}
	return b.fail(evt.Name, rec.Token, err)
}

// fail 计入失败统计并包装为 *core.HandlerError
func (b *Bus) fail(name string, tok core.Token, err error) *core.HandlerError {
	b.failed.Add(1)
	if errors.Is(err, core.ErrHandlerPanic) {
		b.panics.Add(1)
	}
	return &core.HandlerError{Event: name, Token: tok, Err: err}
}

// prune 从实时注册表移除已触发的 once 订阅
func (b *Bus) prune(fired []core.Token) {
	if len(fired) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tok := range fired {
		b.removeLocked(tok)
	}
}

// report 错误交给 OnError，未设置时写日志
func (b *Bus) report(opts core.Options, err error, name string) {
	if opts.OnError != nil {
		opts.OnError(err, name)
		return
	}
	b.logger.Error("event handler failed", "event", name, "error", err)
}

// tracker 单次 Emit 的异步工作收集器
//
// seal 之前登记的工作计入 Join；之后（或未启用异步处理、或本轮中止）
// 登记的工作只在失败时交给 report。
type tracker struct {
	bus   *Bus
	event string
	async bool
	opts  core.Options

	mu      sync.Mutex
	sealed  bool
	pending []core.Pending
}

// bind 返回绑定到单个订阅的 core.Tracker，失败归属于该订阅的令牌
func (t *tracker) bind(tok core.Token) core.Tracker {
	return &binding{tracker: t, token: tok}
}

type binding struct {
	*tracker
	token core.Token
}

// Go 在工作池中运行 fn 并登记
func (bd *binding) Go(ctx context.Context, fn func(ctx context.Context) error) core.Pending {
	f := core.NewFuture()
	if err := bd.bus.workers.Submit(func() { f.Resolve(core.Run(ctx, fn)) }); err != nil {
		f.Resolve(err)
	}
	bd.Track(f)
	return f
}

// Track 登记 Pending，失败结果包装为 *core.HandlerError
func (bd *binding) Track(p core.Pending) {
	t := bd.tracker
	wrapped := core.NewFuture()
	t.mu.Lock()
	join := t.async && !t.sealed
	if join {
		t.pending = append(t.pending, wrapped)
	}
	t.mu.Unlock()

	t.bus.inflight.Add(1)
	go func() {
		<-p.Done()
		t.bus.inflight.Add(-1)
		err := p.Err()
		if err != nil {
			herr := t.bus.fail(t.event, bd.token, err)
			if !join {
				t.bus.report(t.opts, herr, t.event)
			}
			err = herr
		}
		wrapped.Resolve(err)
	}()
}

// seal 结束登记；keep=false 时已登记的工作改为失败即上报
func (t *tracker) seal(keep bool) []core.Pending {
	t.mu.Lock()
	t.sealed = true
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	if keep {
		return pending
	}
	for _, p := range pending {
		go func() {
			<-p.Done()
			if err := p.Err(); err != nil {
				t.bus.report(t.opts, err, t.event)
			}
		}()
	}
	return nil
}
