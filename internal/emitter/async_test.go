package emitter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniyakcom/pulse/core"
)

func TestAsync_JoinSuccess(t *testing.T) {
	b, _ := newTestBus(t)
	var mu sync.Mutex
	var done []string

	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Go(func(context.Context) error {
			mu.Lock()
			done = append(done, "a")
			mu.Unlock()
			return nil
		})
		return nil
	})
	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Track(core.Go(context.Background(), func(context.Context) error {
			mu.Lock()
			done = append(done, "b")
			mu.Unlock()
			return nil
		}))
		return nil
	})

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	require.NotNil(t, join)
	assert.Equal(t, 2, join.Len())
	require.NoError(t, join.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, done)
}

func TestAsync_NoPendingNoJoin(t *testing.T) {
	b, _ := newTestBus(t)
	_, _ = b.Subscribe("evt", func(*core.Event) error { return nil })

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	assert.Nil(t, join)
}

func TestAsync_JoinFailFast(t *testing.T) {
	b, _ := newTestBus(t)
	boom := errors.New("boom")
	release := make(chan struct{})
	defer close(release)

	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Go(func(context.Context) error {
			<-release
			return nil
		})
		e.Go(func(context.Context) error { return boom })
		return nil
	})

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	require.NotNil(t, join)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = join.Wait(ctx)
	require.ErrorIs(t, err, boom)

	var he *core.HandlerError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "evt", he.Event)
}

func TestAsync_PanicInGoroutine(t *testing.T) {
	b, _ := newTestBus(t)
	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Go(func(context.Context) error { panic("late") })
		return nil
	})

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	require.ErrorIs(t, join.Wait(context.Background()), core.ErrHandlerPanic)

	assert.Eventually(t, func() bool { return b.Stats().Panics == 1 }, time.Second, 5*time.Millisecond)
}

func TestAsync_DisabledReportsFailures(t *testing.T) {
	reported := make(chan error, 1)
	b, _ := newTestBus(t, func(c *Config) {
		c.Options.AsyncEventHandling = false
		c.Options.OnError = func(err error, _ string) { reported <- err }
	})
	boom := errors.New("boom")
	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Go(func(context.Context) error { return boom })
		return nil
	})

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	assert.Nil(t, join)

	select {
	case err := <-reported:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("async failure was not reported")
	}
}

func TestAsync_AbortedPassReportsFailures(t *testing.T) {
	reported := make(chan error, 1)
	b, _ := newTestBus(t, func(c *Config) {
		c.Options.CatchErrors = false
		c.Options.OnError = func(err error, _ string) { reported <- err }
	})
	late := errors.New("late")
	syncErr := errors.New("sync")
	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Go(func(context.Context) error { return late })
		return syncErr
	})

	join, err := b.Emit("evt", nil)
	assert.Nil(t, join)
	require.ErrorIs(t, err, syncErr)

	select {
	case err := <-reported:
		assert.ErrorIs(t, err, late)
	case <-time.After(5 * time.Second):
		t.Fatal("async failure of aborted pass was not reported")
	}
}

func TestAsync_WorkerPool(t *testing.T) {
	b, _ := newTestBus(t, func(c *Config) { c.Workers = 2 })
	var mu sync.Mutex
	var n int

	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		for i := 0; i < 8; i++ {
			e.Go(func(context.Context) error {
				mu.Lock()
				n++
				mu.Unlock()
				return nil
			})
		}
		return nil
	})

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	require.NoError(t, join.Wait(context.Background()))
	assert.Equal(t, 8, n)
}

func TestAsync_ClosedPool(t *testing.T) {
	b, _ := newTestBus(t, func(c *Config) { c.Workers = 1 })
	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Go(func(context.Context) error { return nil })
		return nil
	})
	b.Close()

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	require.NotNil(t, join)
	assert.ErrorIs(t, join.Wait(context.Background()), core.ErrPoolClosed)
}

func TestAsync_ContextPropagates(t *testing.T) {
	b, _ := newTestBus(t)
	type key struct{}
	var got any
	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		got = e.Context().Value(key{})
		return nil
	})

	ctx := context.WithValue(context.Background(), key{}, "v")
	_, err := b.EmitContext(ctx, "evt", nil)
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestAsync_LateTrackKeepsOwnToken(t *testing.T) {
	reported := make(chan error, 1)
	b, _ := newTestBus(t, func(c *Config) {
		c.Options.OnError = func(err error, _ string) { reported <- err }
	})
	boom := errors.New("boom")
	later := make(chan struct{})

	first, _ := b.Subscribe("evt", func(e *core.Event) error {
		go func() {
			<-later
			e.Track(core.Go(context.Background(), func(context.Context) error { return boom }))
		}()
		return nil
	})
	_, _ = b.Subscribe("evt", func(*core.Event) error { return nil })

	_, err := b.Emit("evt", nil)
	require.NoError(t, err)
	close(later)

	select {
	case err := <-reported:
		var he *core.HandlerError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, first.Token(), he.Token)
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("late async failure was not reported")
	}
}

func TestAsync_PendingAndWorkerStats(t *testing.T) {
	b, _ := newTestBus(t, func(c *Config) { c.Workers = 2 })
	release := make(chan struct{})
	_, _ = b.Subscribe("evt", func(e *core.Event) error {
		e.Go(func(context.Context) error {
			<-release
			return nil
		})
		return nil
	})

	join, err := b.Emit("evt", nil)
	require.NoError(t, err)
	require.NotNil(t, join)

	st := b.Stats()
	assert.Equal(t, int64(1), st.Pending)
	assert.Equal(t, 2, st.WorkersCap)

	close(release)
	require.NoError(t, join.Wait(context.Background()))
	assert.Equal(t, int64(0), b.Stats().Pending)
}
