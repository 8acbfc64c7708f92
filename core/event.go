package core

import (
	"context"
	"time"
)

// Token 订阅令牌（每个 Bus 内递增，0 为无效值）
type Token uint64

// Tracker 收集单次 Emit 内产生的异步工作（由 Bus 实现注入）
type Tracker interface {
	Go(ctx context.Context, fn func(ctx context.Context) error) Pending
	Track(p Pending)
}

// Event 单次 Emit 传递给 handler 的事件（每个 handler 一份视图，Name/Data/Timestamp 相同）
type Event struct {
	Name      string
	Data      any
	Timestamp time.Time

	ctx     context.Context
	tracker Tracker
}

// NewEvent 创建事件，tracker 为 nil 时异步工作不纳入任何 Join
func NewEvent(ctx context.Context, name string, data any, ts time.Time, tracker Tracker) *Event {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Event{Name: name, Data: data, Timestamp: ts, ctx: ctx, tracker: tracker}
}

// WithTracker 返回使用 t 登记异步工作的副本
func (e *Event) WithTracker(t Tracker) *Event {
	c := *e
	c.tracker = t
	return &c
}

// Context 返回 Emit 传入的 ctx
func (e *Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Go 启动异步工作并登记到本次 Emit
//
// AsyncEventHandling=true 时该工作计入 Emit 返回的 Join；
// 否则仅运行，失败交给 OnError。
func (e *Event) Go(fn func(ctx context.Context) error) Pending {
	if e.tracker == nil {
		return Go(e.Context(), fn)
	}
	return e.tracker.Go(e.Context(), fn)
}

// Track 登记外部创建的 Pending
func (e *Event) Track(p Pending) {
	if p == nil || e.tracker == nil {
		return
	}
	e.tracker.Track(p)
}
