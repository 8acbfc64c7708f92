// Package registry 提供命名订阅桶与通配订阅列表
//
// 两者均按 Priority 升序排列，同优先级保持插入顺序。
// 本包不加锁，由调用方（emitter.Bus）串行化访问。
package registry

import (
	"slices"
	"sort"
	"sync/atomic"
	"unsafe"

	"github.com/uniyakcom/pulse/core"
)

// Record 订阅记录，只属于一个桶
type Record struct {
	Token    core.Token
	Name     string // 通配订阅为空
	Handler  core.Handler
	Priority core.Priority
	Once     bool
	Filter   *core.Filter

	fired atomic.Bool
}

// Claim 标记 once 订阅已触发；非 once 订阅恒为 true
// 嵌套 Emit 中同一 once 订阅只会被认领一次。
func (r *Record) Claim() bool {
	if !r.Once {
		return true
	}
	return r.fired.CompareAndSwap(false, true)
}

// insert 插入到最后一个 Priority <= r.Priority 的记录之后
func insert(list []*Record, r *Record) []*Record {
	i := sort.Search(len(list), func(i int) bool { return list[i].Priority > r.Priority })
	return slices.Insert(list, i, r)
}

// sameFunc 函数同一性（比较 funcval 指针）
// 每个闭包实例各不相同，同一个值的副本相等。
func sameFunc(a, b core.Handler) bool {
	if a == nil || b == nil {
		return false
	}
	return funcval(a) == funcval(b)
}

func funcval(h core.Handler) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&h))
}

// Registry 命名订阅：事件名 → 有序订阅桶
type Registry struct {
	buckets map[string][]*Record
	index   map[core.Token]string
}

// New 创建空注册表
func New() *Registry {
	return &Registry{
		buckets: make(map[string][]*Record),
		index:   make(map[core.Token]string),
	}
}

// Add 插入记录并保持桶有序
func (r *Registry) Add(rec *Record) {
	r.buckets[rec.Name] = insert(r.buckets[rec.Name], rec)
	r.index[rec.Token] = rec.Name
}

// Ensure 创建空桶（快照恢复专用，保留事件名）
func (r *Registry) Ensure(name string) {
	if _, ok := r.buckets[name]; !ok {
		r.buckets[name] = nil
	}
}

// Bucket 返回桶的副本
func (r *Registry) Bucket(name string) []*Record {
	return slices.Clone(r.buckets[name])
}

// Remove 按令牌移除
func (r *Registry) Remove(tok core.Token) bool {
	name, ok := r.index[tok]
	if !ok {
		return false
	}
	list := r.buckets[name]
	for i, rec := range list {
		if rec.Token == tok {
			r.removeAt(name, i)
			return true
		}
	}
	return false
}

// RemoveHandler 移除首个同一函数的记录
func (r *Registry) RemoveHandler(name string, h core.Handler) bool {
	for i, rec := range r.buckets[name] {
		if sameFunc(rec.Handler, h) {
			r.removeAt(name, i)
			return true
		}
	}
	return false
}

// RemoveBucket 移除整个桶（含快照恢复的空桶），返回桶是否存在
func (r *Registry) RemoveBucket(name string) bool {
	list, ok := r.buckets[name]
	if !ok {
		return false
	}
	for _, rec := range list {
		delete(r.index, rec.Token)
	}
	delete(r.buckets, name)
	return true
}

// removeAt 移除后桶为空则删除键
func (r *Registry) removeAt(name string, i int) {
	list := r.buckets[name]
	delete(r.index, list[i].Token)
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(r.buckets, name)
		return
	}
	r.buckets[name] = list
}

// Count 事件的订阅数
func (r *Registry) Count(name string) int { return len(r.buckets[name]) }

// Total 全部命名订阅数
func (r *Registry) Total() int { return len(r.index) }

// Names 全部事件名（升序，含快照恢复的空桶）
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.buckets))
	for name := range r.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Counts 非空桶的订阅数
func (r *Registry) Counts() map[string]int {
	m := make(map[string]int, len(r.buckets))
	for name, list := range r.buckets {
		if len(list) > 0 {
			m[name] = len(list)
		}
	}
	return m
}

// Reset 清空
func (r *Registry) Reset() {
	r.buckets = make(map[string][]*Record)
	r.index = make(map[core.Token]string)
}
