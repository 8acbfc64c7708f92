package marshal

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"github.com/uniyakcom/pulse/core"
)

// Header JSON 快照的头部信息
type Header struct {
	Version     int
	ID          string
	TakenAt     time.Time
	EventNames  []string // 订阅数非零的事件名（升序）
	HistorySize int
}

// Peek 不完整解码，只读取 JSON 快照的头部字段
//
// 版本不受支持时返回 ErrUnsupportedVersion（Header 仍填充已读到的字段）。
func Peek(data []byte) (Header, error) {
	var h Header
	if !gjson.ValidBytes(data) {
		return h, errors.New("marshal: invalid JSON")
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return h, errors.New("marshal: snapshot must be a JSON object")
	}

	fields := r.Map()
	h.Version = int(fields["version"].Int())
	h.ID = fields["id"].String()
	if ts := fields["taken_at"]; ts.Exists() {
		t, err := time.Parse(time.RFC3339Nano, ts.String())
		if err != nil {
			return h, fmt.Errorf("marshal: taken_at: %w", err)
		}
		h.TakenAt = t
	}
	fields["events"].ForEach(func(k, v gjson.Result) bool {
		if v.Int() > 0 {
			h.EventNames = append(h.EventNames, k.String())
		}
		return true
	})
	sort.Strings(h.EventNames)
	h.HistorySize = len(fields["history"].Array())

	if h.Version != 0 && h.Version != core.SnapshotVersion {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return h, nil
}
