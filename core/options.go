package core

import (
	"sort"
	"time"
)

// DefaultMaxHistorySize 历史记录默认容量
const DefaultMaxHistorySize = 1000

// SnapshotVersion 当前快照格式版本
const SnapshotVersion = 1

// Options 总线行为选项（OnError 之外均可序列化）
type Options struct {
	AsyncEventHandling bool `json:"async_event_handling" yaml:"async_event_handling"`
	CatchErrors        bool `json:"catch_errors" yaml:"catch_errors"`
	AllowEmptyEvents   bool `json:"allow_empty_events" yaml:"allow_empty_events"`
	MaxHistorySize     int  `json:"max_history_size" yaml:"max_history_size"`

	// OnError 为 nil 时写入日志
	OnError ErrorHandler `json:"-" yaml:"-"`
}

// DefaultOptions 默认选项
func DefaultOptions() Options {
	return Options{
		AsyncEventHandling: true,
		CatchErrors:        true,
		AllowEmptyEvents:   true,
		MaxHistorySize:     DefaultMaxHistorySize,
	}
}

// Normalize MaxHistorySize <= 0 时回落默认容量
func (o Options) Normalize() Options {
	if o.MaxHistorySize <= 0 {
		o.MaxHistorySize = DefaultMaxHistorySize
	}
	return o
}

// Snapshot 总线形态快照
//
// 只记录事件名与订阅数量，不含 handler：恢复后事件名与历史一致，
// 但不存在可调用的 handler。
type Snapshot struct {
	Version           int            `json:"version" yaml:"version"`
	ID                string         `json:"id" yaml:"id"`
	TakenAt           time.Time      `json:"taken_at" yaml:"taken_at"`
	Events            map[string]int `json:"events" yaml:"events"`
	WildcardListeners int            `json:"wildcard_listeners" yaml:"wildcard_listeners"`
	History           []HistoryEntry `json:"history" yaml:"history"`
	Options           Options        `json:"options" yaml:"options"`
}

// EventNames 订阅数非零的事件名（升序）
func (s *Snapshot) EventNames() []string {
	names := make([]string, 0, len(s.Events))
	for name, n := range s.Events {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
