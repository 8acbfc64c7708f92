package emitter

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/uniyakcom/pulse/core"
	"github.com/uniyakcom/pulse/internal/history"
)

// Snapshot 捕获事件名、各事件订阅数、通配订阅数、历史副本与选项
// 不捕获 handler。
func (b *Bus) Snapshot() *core.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &core.Snapshot{
		Version:           core.SnapshotVersion,
		ID:                uuid.Must(uuid.NewV7()).String(),
		TakenAt:           b.now(),
		Events:            b.named.Counts(),
		WildcardListeners: b.wild.Count(),
		History:           b.history.Entries(),
		Options:           b.opts,
	}
}

// RestoreFromSnapshot 清空总线后安装快照的选项与历史，并为订阅数非零的事件名创建空桶
//
// 原 handler 无法恢复：恢复后 EventNames() 与历史一致，但这些事件没有可调用的 handler。
// 快照 OnError 为 nil（例如从字节解码）时保留当前 OnError。
func (b *Bus) RestoreFromSnapshot(s *core.Snapshot) error {
	if s == nil {
		return fmt.Errorf("%w: snapshot must not be nil", core.ErrInvalidArgument)
	}
	opts := s.Options.Normalize()

	b.mu.Lock()
	if opts.OnError == nil {
		opts.OnError = b.opts.OnError
	}
	b.named.Reset()
	b.wild.Reset()
	b.opts = opts
	b.history = history.New(opts.MaxHistorySize)
	b.history.Replace(s.History)
	for _, name := range s.EventNames() {
		if core.ValidateName(name) == nil {
			b.named.Ensure(name)
		}
	}
	b.mu.Unlock()

	b.logger.Debug("snapshot restored", "id", s.ID, "events", len(s.Events), "history", len(s.History))
	return nil
}
