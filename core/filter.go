package core

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// Filter 通配订阅过滤器
//
// Emit 时先求值 Event（不通过即短路），再求值 Data；
// Timestamp 不参与 Emit，仅供 QueryHistory 等历史查询使用。
type Filter struct {
	Event     func(name string) bool
	Data      func(name string, data any) bool
	Timestamp func(ts time.Time) bool
}

// Match 按 Event → Data 顺序判定，nil 过滤器全部放行
func (f *Filter) Match(name string, data any) bool {
	if f == nil {
		return true
	}
	if f.Event != nil && !f.Event(name) {
		return false
	}
	if f.Data != nil && !f.Data(name, data) {
		return false
	}
	return true
}

// MatchEntry 对历史条目求值全部三个谓词
func (f *Filter) MatchEntry(e HistoryEntry) bool {
	if !f.Match(e.Name, e.Data) {
		return false
	}
	return f == nil || f.Timestamp == nil || f.Timestamp(e.Timestamp)
}

// EventGlob 以 '.' 分段的 glob 匹配事件名
//   - user.*  匹配单段（user.created）
//   - user.** 匹配任意深度（user.profile.updated）
//
// 多个 pattern 任一匹配即通过。
func EventGlob(patterns ...string) (func(name string) bool, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: at least one pattern required", ErrInvalidArgument)
	}
	gs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidArgument, p, err)
		}
		gs = append(gs, g)
	}
	return func(name string) bool {
		for _, g := range gs {
			if g.Match(name) {
				return true
			}
		}
		return false
	}, nil
}

// MustEventGlob 同 EventGlob，pattern 非法时 panic
func MustEventGlob(patterns ...string) func(name string) bool {
	fn, err := EventGlob(patterns...)
	if err != nil {
		panic(err)
	}
	return fn
}

// EventIn 事件名精确匹配集合
func EventIn(names ...string) func(name string) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

// Since ts >= t
func Since(t time.Time) func(ts time.Time) bool {
	return func(ts time.Time) bool { return !ts.Before(t) }
}

// Until ts < t
func Until(t time.Time) func(ts time.Time) bool {
	return func(ts time.Time) bool { return ts.Before(t) }
}

// Between from <= ts < to
func Between(from, to time.Time) func(ts time.Time) bool {
	return func(ts time.Time) bool { return !ts.Before(from) && ts.Before(to) }
}
