// Package history 提供固定容量的事件历史环形缓冲
//
// 严格 FIFO：超出容量时丢弃最旧条目，从不丢弃最新条目。
// 条目中的 Data 按引用保存，外部修改会反映到历史中。
package history

import "github.com/uniyakcom/pulse/core"

// Ring 环形缓冲（非并发安全，由调用方加锁）
type Ring struct {
	buf  []core.HistoryEntry
	head int // 缓冲写满后指向最旧条目
	cap  int
}

// New 创建容量为 capacity 的缓冲，capacity <= 0 时使用默认容量
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = core.DefaultMaxHistorySize
	}
	return &Ring{cap: capacity}
}

// Append 追加条目，满时覆盖最旧条目
func (r *Ring) Append(e core.HistoryEntry) {
	if len(r.buf) < r.cap {
		r.buf = append(r.buf, e)
		return
	}
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.cap
}

// Entries 按从旧到新返回副本
func (r *Ring) Entries() []core.HistoryEntry {
	out := make([]core.HistoryEntry, 0, len(r.buf))
	out = append(out, r.buf[r.head:]...)
	return append(out, r.buf[:r.head]...)
}

// Len 当前条目数
func (r *Ring) Len() int { return len(r.buf) }

// Cap 容量
func (r *Ring) Cap() int { return r.cap }

// Reset 清空
func (r *Ring) Reset() {
	clear(r.buf)
	r.buf = r.buf[:0]
	r.head = 0
}

// Replace 以 entries（从旧到新）替换内容，仅保留最新的 cap 条
func (r *Ring) Replace(entries []core.HistoryEntry) {
	r.Reset()
	if len(entries) > r.cap {
		entries = entries[len(entries)-r.cap:]
	}
	r.buf = append(r.buf, entries...)
}
