package registry

import (
	"context"
	"slices"

	"github.com/uniyakcom/pulse/core"
)

// Wildcards 通配订阅列表（对每个事件生效，受 Filter 约束）
type Wildcards struct {
	list []*Record
}

// NewWildcards 创建空列表
func NewWildcards() *Wildcards {
	return &Wildcards{}
}

// Add 插入并保持有序
func (w *Wildcards) Add(rec *Record) {
	w.list = insert(w.list, rec)
}

// Records 返回列表副本
func (w *Wildcards) Records() []*Record {
	return slices.Clone(w.list)
}

// Remove 按令牌移除
func (w *Wildcards) Remove(tok core.Token) bool {
	return w.removeFunc(func(rec *Record) bool { return rec.Token == tok })
}

// RemoveHandler 移除首个同一函数的记录
func (w *Wildcards) RemoveHandler(h core.Handler) bool {
	return w.removeFunc(func(rec *Record) bool { return sameFunc(rec.Handler, h) })
}

func (w *Wildcards) removeFunc(match func(*Record) bool) bool {
	i := slices.IndexFunc(w.list, match)
	if i < 0 {
		return false
	}
	w.list = slices.Delete(w.list, i, i+1)
	return true
}

// Count 通配订阅数
func (w *Wildcards) Count() int { return len(w.list) }

// Reset 清空
func (w *Wildcards) Reset() { w.list = nil }

// Match 过滤出对 (name, data) 生效的记录，保持原有顺序
// Filter 为用户代码，调用方应在锁外执行；panic 的过滤器视为不匹配，并交给 fail。
func Match(recs []*Record, name string, data any, fail func(*Record, error)) []*Record {
	out := recs[:0:0]
	for _, rec := range recs {
		var ok bool
		err := core.Run(context.Background(), func(context.Context) error {
			ok = rec.Filter.Match(name, data)
			return nil
		})
		if err != nil {
			if fail != nil {
				fail(rec, err)
			}
			continue
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}
