package marshal

import (
	"gopkg.in/yaml.v3"

	"github.com/uniyakcom/pulse/core"
)

// YAML YAML 编解码器
type YAML struct{}

var _ Marshaler = YAML{}

// Marshal 将快照序列化为 YAML。
func (YAML) Marshal(s *core.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, nilSnapshot()
	}
	return yaml.Marshal(s)
}

// Unmarshal 将 YAML 反序列化为快照。
func (YAML) Unmarshal(data []byte) (*core.Snapshot, error) {
	var s core.Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := checkVersion(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
