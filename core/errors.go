package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument 事件名或 handler 非法，始终返回给直接调用方
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoSubscribers AllowEmptyEvents=false 时发布了无人订阅的事件
	ErrNoSubscribers = errors.New("no subscribers")

	// ErrHandlerPanic handler 发生 panic
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrPoolClosed 总线关闭后提交异步工作
	ErrPoolClosed = errors.New("worker pool closed")
)

// HandlerError handler 失败（返回 error 或 panic）
type HandlerError struct {
	Event string
	Token Token
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d for event %q: %v", e.Token, e.Event, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError handler panic 的值与堆栈
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Is 使 errors.Is(err, ErrHandlerPanic) 成立
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// ValidateName 校验事件名：非空且不全为空白
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: event name must be a non-empty string", ErrInvalidArgument)
	}
	return nil
}

// ValidateHandler 校验 handler 非 nil
func ValidateHandler(h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: handler must not be nil", ErrInvalidArgument)
	}
	return nil
}
