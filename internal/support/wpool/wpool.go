// Package wpool 运行 handler 提交的异步工作
//
// size > 0 时使用 ants 固定大小池（满时 Submit 阻塞，形成背压）；
// size == 0 时每个任务一个 goroutine。
// Release 后 Submit 返回 core.ErrPoolClosed。
package wpool

import (
	"errors"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/uniyakcom/pulse/core"
)

// Pool 异步工作池
type Pool struct {
	ants   *ants.Pool
	closed atomic.Bool
}

// New 创建工作池，size < 0 视为 0
func New(size int) (*Pool, error) {
	p := &Pool{}
	if size <= 0 {
		return p, nil
	}
	ap, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	p.ants = ap
	return p, nil
}

// Submit 提交任务
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return core.ErrPoolClosed
	}
	if p.ants == nil {
		go task()
		return nil
	}
	if err := p.ants.Submit(task); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return core.ErrPoolClosed
		}
		return err
	}
	return nil
}

// Running 正在运行的 worker 数（goroutine 模式恒为 0）
func (p *Pool) Running() int {
	if p.ants == nil {
		return 0
	}
	return p.ants.Running()
}

// Cap 池容量（goroutine 模式为 0）
func (p *Pool) Cap() int {
	if p.ants == nil {
		return 0
	}
	return p.ants.Cap()
}

// Release 关闭池，已提交任务继续运行至结束
func (p *Pool) Release() {
	if !p.closed.CompareAndSwap(false, true) {
		return // 已关闭
	}
	if p.ants != nil {
		p.ants.Release()
	}
}
