package core

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
)

// Pending 尚未完成的异步操作
type Pending interface {
	// Done 完成时关闭
	Done() <-chan struct{}
	// Err 完成前返回 nil
	Err() error
}

// Future 可手动完成的 Pending，首次 Resolve 生效
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewFuture 创建未完成的 Future
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve 以 err 完成（nil 表示成功），重复调用无效
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

func (f *Future) Done() <-chan struct{} { return f.done }

func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Failed 返回已失败的 Pending
func Failed(err error) Pending {
	f := NewFuture()
	f.Resolve(err)
	return f
}

// FromChan 以 ch 的首个值（或关闭）完成
func FromChan(ch <-chan error) Pending {
	f := NewFuture()
	go func() {
		err, _ := <-ch
		f.Resolve(err)
	}()
	return f
}

// Go 在新 goroutine 中运行 fn，panic 转为 *PanicError
func Go(ctx context.Context, fn func(ctx context.Context) error) Pending {
	f := NewFuture()
	go func() { f.Resolve(Run(ctx, fn)) }()
	return f
}

// Run 同步运行 fn，recover panic
func Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	var pc panics.Catcher
	pc.Try(func() { err = fn(ctx) })
	if r := pc.Recovered(); r != nil {
		return &PanicError{Value: r.Value, Stack: string(r.Stack)}
	}
	return err
}

// Wait 等待 p 完成或 ctx 取消
func Wait(ctx context.Context, p Pending) error {
	select {
	case <-p.Done():
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join 单次 Emit 全部异步工作的聚合完成信号
//
// 全部成功时以 nil 完成；任一失败立即以该错误完成（fail-fast），
// 其余工作继续运行，不会被取消。
type Join struct {
	n    int
	done chan struct{}
	err  error
}

// NewJoin 聚合 pending；ctx 取消时 Join 以 ctx.Err() 完成
func NewJoin(ctx context.Context, pending []Pending) *Join {
	if ctx == nil {
		ctx = context.Background()
	}
	j := &Join{n: len(pending), done: make(chan struct{})}
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pending {
		g.Go(func() error { return Wait(gctx, p) })
	}
	go func() {
		j.err = g.Wait()
		close(j.done)
	}()
	return j
}

// Len 聚合的异步工作数量
func (j *Join) Len() int { return j.n }

func (j *Join) Done() <-chan struct{} { return j.done }

func (j *Join) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// Wait 阻塞直到 Join 完成或 ctx 取消
func (j *Join) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return Wait(ctx, j)
}
