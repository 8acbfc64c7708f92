package core

import "strconv"

// Priority 执行优先级，值越小越先执行
type Priority int

const (
	// PriorityCritical 最先执行
	PriorityCritical Priority = 100
	// PriorityHigh 高优先级
	PriorityHigh Priority = 200
	// PriorityNormal 默认优先级
	PriorityNormal Priority = 300
	// PriorityLow 最后执行
	PriorityLow Priority = 400
)

// OrDefault 零值视为 PriorityNormal
func (p Priority) OrDefault() Priority {
	if p == 0 {
		return PriorityNormal
	}
	return p
}

// String 返回优先级名称，非预设值输出数值
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	}
	return "priority(" + strconv.Itoa(int(p)) + ")"
}

// PickPriority 解析可选优先级参数（缺省或零值为 PriorityNormal）
func PickPriority(ps ...Priority) Priority {
	if len(ps) == 0 {
		return PriorityNormal
	}
	return ps[0].OrDefault()
}
