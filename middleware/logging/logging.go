// Package logging 提供 handler 日志中间件。
//
// 记录每次调用的事件名、耗时和错误信息。
//
//	bus.Subscribe("order.created", logging.New(logger)(handleOrder))
package logging

import (
	"log/slog"
	"time"

	"github.com/uniyakcom/pulse/core"
)

// Middleware handler 装饰器
type Middleware func(core.Handler) core.Handler

// New 创建日志中间件，logger 为 nil 时使用 slog.Default()。
func New(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(h core.Handler) core.Handler {
		return func(evt *core.Event) error {
			start := time.Now()

			err := h(evt)

			attrs := []any{
				"event", evt.Name,
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("event handler returned error", append(attrs, "error", err)...)
			} else {
				logger.Debug("event handled", attrs...)
			}
			return err
		}
	}
}

// Chain 按顺序组合中间件，mws[0] 位于最外层
func Chain(h core.Handler, mws ...Middleware) core.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
