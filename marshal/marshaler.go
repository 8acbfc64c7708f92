// Package marshal 提供 core.Snapshot 的序列化/反序列化接口和实现。
//
// 快照中的 handler 不可序列化，编码内容只有事件名与订阅数、历史、选项。
// 历史条目的 Data 解码后为通用值（map[string]any、float64 等）。
package marshal

import (
	"errors"
	"fmt"

	"github.com/uniyakcom/pulse/core"
)

// ErrUnsupportedVersion 快照版本与当前格式不兼容
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Marshaler 快照编解码器接口
type Marshaler interface {
	// Marshal 将快照序列化为字节。
	Marshal(s *core.Snapshot) ([]byte, error)

	// Unmarshal 将字节反序列化为快照。
	Unmarshal(data []byte) (*core.Snapshot, error)
}

// checkVersion 0 视为缺省的当前版本
func checkVersion(s *core.Snapshot) error {
	switch s.Version {
	case 0:
		s.Version = core.SnapshotVersion
		return nil
	case core.SnapshotVersion:
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
}

func nilSnapshot() error {
	return fmt.Errorf("%w: snapshot must not be nil", core.ErrInvalidArgument)
}
