package pulse

import (
	"runtime"

	"github.com/uniyakcom/pulse/core"
	"github.com/uniyakcom/pulse/internal/emitter"
)

// ═══════════════════════════════════════════════════════════════════
// 预设场景：Scenario() 字符串配置
// ═══════════════════════════════════════════════════════════════════

// 预设场景名称
const (
	ScenarioDefault = "default" // 默认选项
	ScenarioSync    = "sync"    // 不聚合异步工作，Emit 从不返回 Join
	ScenarioStrict  = "strict"  // handler 错误中止分发并返回；无订阅者的事件报错
	ScenarioPooled  = "pooled"  // 异步工作在 NumCPU 大小的 ants 池中运行
)

// presets 场景 → 配置构造
var presets = map[string]func() *Config{
	ScenarioDefault: emitter.DefaultConfig,
	ScenarioSync: func() *Config {
		c := emitter.DefaultConfig()
		c.Options.AsyncEventHandling = false
		return c
	},
	ScenarioStrict: func() *Config {
		c := emitter.DefaultConfig()
		c.Options.CatchErrors = false
		c.Options.AllowEmptyEvents = false
		return c
	},
	ScenarioPooled: func() *Config {
		c := emitter.DefaultConfig()
		c.Workers = runtime.NumCPU()
		return c
	},
}

// Preset 获取预设配置（每次返回新副本），未知名称使用默认配置
func Preset(name string) *Config {
	if mk, ok := presets[name]; ok {
		return mk()
	}
	return emitter.DefaultConfig()
}

// Scenario 预设场景快速创建
// name: "default", "sync", "strict", "pooled"
func Scenario(name string, onError ...core.ErrorHandler) (Bus, error) {
	cfg := Preset(name)
	if len(onError) > 0 {
		cfg.Options.OnError = onError[0]
	}
	return NewWithConfig(cfg)
}
