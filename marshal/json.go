package marshal

import (
	"encoding/json"

	"github.com/uniyakcom/pulse/core"
)

// JSON JSON 编解码器；Indent=true 时两空格缩进输出
type JSON struct {
	Indent bool
}

var _ Marshaler = JSON{}

// Marshal 将快照序列化为 JSON。
func (j JSON) Marshal(s *core.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, nilSnapshot()
	}
	if j.Indent {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}

// Unmarshal 将 JSON 反序列化为快照，先读取版本号再完整解码。
func (j JSON) Unmarshal(data []byte) (*core.Snapshot, error) {
	if _, err := Peek(data); err != nil {
		return nil, err
	}
	var s core.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := checkVersion(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
