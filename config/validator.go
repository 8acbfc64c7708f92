package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError 单个字段的校验失败
type ValidationError struct {
	Field   string // 配置路径，如 bus.workers
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors 校验失败集合
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels 可用日志级别
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats 可用日志格式
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// Validate 返回全部校验错误
//
// max_history_size <= 0 合法，表示使用默认容量。
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Bus.Workers < 0 {
		errs = append(errs, ValidationError{
			Field:   "bus.workers",
			Value:   c.Bus.Workers,
			Message: "must be >= 0",
		})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of %v", ValidLogLevels()),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Log.Format)) {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: fmt.Sprintf("must be one of %v", ValidLogFormats()),
		})
	}
	if c.Store.Path != "" && strings.TrimSpace(c.Store.Label) == "" {
		errs = append(errs, ValidationError{
			Field:   "store.label",
			Value:   c.Store.Label,
			Message: "must not be empty when store.path is set",
		})
	}
	return errs
}
