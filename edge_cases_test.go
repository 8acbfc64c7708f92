package pulse

import (
	"errors"
	"strings"
	"testing"
)

func newBus(t testing.TB, opts ...Options) Bus {
	t.Helper()
	bus, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(bus.Close)
	return bus
}

// TestEdgeCaseZeroHandlers 测试零handler场景
func TestEdgeCaseZeroHandlers(t *testing.T) {
	bus := newBus(t)

	join, err := bus.Emit("no.handlers", nil)
	if err != nil || join != nil {
		t.Errorf("expected nil, nil; got %v, %v", join, err)
	}
	if len(bus.History()) != 1 {
		t.Error("events without subscribers are still recorded")
	}
}

// TestEdgeCaseNilData 测试空数据
func TestEdgeCaseNilData(t *testing.T) {
	bus := newBus(t)

	var got any = "unset"
	bus.Subscribe("empty", func(e *Event) error {
		got = e.Data
		return nil
	})
	bus.Emit("empty", nil)
	if got != nil {
		t.Errorf("expected nil data, got %v", got)
	}
}

// TestEdgeCaseInvalidNames 测试非法事件名
func TestEdgeCaseInvalidNames(t *testing.T) {
	bus := newBus(t)
	for _, name := range []string{"", "  ", "\n"} {
		if _, err := bus.Subscribe(name, func(e *Event) error { return nil }); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Subscribe(%q) = %v", name, err)
		}
		if _, err := bus.Emit(name, nil); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Emit(%q) = %v", name, err)
		}
	}
	if _, err := bus.Once("evt", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Once(nil handler) = %v", err)
	}
}

// TestEdgeCaseDuplicateOff 测试重复取消订阅
func TestEdgeCaseDuplicateOff(t *testing.T) {
	bus := newBus(t)
	sub, _ := bus.Subscribe("test", func(e *Event) error { return nil })

	if !sub.Unsubscribe() {
		t.Error("first Unsubscribe should succeed")
	}
	if sub.Unsubscribe() || bus.Off(sub.Token()) {
		t.Error("second removal should report false")
	}
}

// TestEdgeCaseOffZeroID 测试取消ID为0的订阅
func TestEdgeCaseOffZeroID(t *testing.T) {
	bus := newBus(t)
	if bus.Off(0) {
		t.Error("token 0 is never issued")
	}
}

// TestEdgeCaseUnsubscribeUnknown 退订不存在的事件
func TestEdgeCaseUnsubscribeUnknown(t *testing.T) {
	bus := newBus(t)
	if bus.Unsubscribe("missing") {
		t.Error("expected false for unknown event")
	}
	if bus.Unsubscribe("missing", func(e *Event) error { return nil }) {
		t.Error("expected false for unknown handler")
	}
	if bus.UnsubscribeFromAll(func(e *Event) error { return nil }) {
		t.Error("expected false for unknown wildcard handler")
	}
}

// TestEdgeCaseManyHandlers 测试大量handler
func TestEdgeCaseManyHandlers(t *testing.T) {
	bus := newBus(t)
	const n = 1000
	var count int
	for i := 0; i < n; i++ {
		bus.Subscribe("many", func(e *Event) error {
			count++
			return nil
		}, Priority(i%7+1))
	}
	bus.Emit("many", nil)
	if count != n {
		t.Errorf("expected %d calls, got %d", n, count)
	}
	if st := bus.State(); st.TotalListeners != n {
		t.Errorf("TotalListeners = %d", st.TotalListeners)
	}
}

// TestEdgeCaseVeryLongEventName 测试超长事件名
func TestEdgeCaseVeryLongEventName(t *testing.T) {
	bus := newBus(t)
	name := strings.Repeat("a.", 500) + "end"
	var called bool
	bus.Subscribe(name, func(e *Event) error {
		called = true
		return nil
	})
	bus.Emit(name, nil)
	if !called {
		t.Error("handler not called for long event name")
	}
}

// TestEdgeCaseCustomPriority 非预设优先级按数值排序
func TestEdgeCaseCustomPriority(t *testing.T) {
	bus := newBus(t)
	var order []int
	for _, p := range []int{250, 100, 401, 300} {
		bus.Subscribe("evt", func(e *Event) error {
			order = append(order, p)
			return nil
		}, Priority(p))
	}
	bus.Emit("evt", nil)
	want := []int{100, 250, 300, 401}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

// TestEdgeCaseHistoryCapacityOne 容量为 1 时只保留最新事件
func TestEdgeCaseHistoryCapacityOne(t *testing.T) {
	bus := newBus(t, Options{MaxHistorySize: 1, CatchErrors: true, AllowEmptyEvents: true})
	bus.Emit("a", 1)
	bus.Emit("b", 2)
	h := bus.History()
	if len(h) != 1 || h[0].Name != "b" {
		t.Errorf("history = %+v", h)
	}
}

// TestEdgeCaseHistoryHoldsReference 历史按引用保存 Data
func TestEdgeCaseHistoryHoldsReference(t *testing.T) {
	bus := newBus(t)
	payload := map[string]int{"n": 1}
	bus.Emit("evt", payload)
	payload["n"] = 2

	got := bus.History()[0].Data.(map[string]int)
	if got["n"] != 2 {
		t.Errorf("expected mutation to be visible, got %v", got)
	}
}

// TestEdgeCaseOnceUnsubscribedBeforeEmit once 订阅在触发前退订
func TestEdgeCaseOnceUnsubscribedBeforeEmit(t *testing.T) {
	bus := newBus(t)
	var called bool
	sub, _ := bus.Once("evt", func(e *Event) error {
		called = true
		return nil
	})
	sub.Unsubscribe()
	bus.Emit("evt", nil)
	if called {
		t.Error("unsubscribed once handler fired")
	}
}

// TestEdgeCaseUnsubscribeSelf handler 内退订自身
func TestEdgeCaseUnsubscribeSelf(t *testing.T) {
	bus := newBus(t)
	var calls int
	var sub *Subscription
	sub, _ = bus.Subscribe("evt", func(e *Event) error {
		calls++
		sub.Unsubscribe()
		return nil
	})
	bus.Emit("evt", nil)
	bus.Emit("evt", nil)
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if bus.HasListeners("evt") {
		t.Error("bucket should be gone")
	}
}

// TestEdgeCaseRestoreKeepsTaxonomy 恢复后空事件名仍可见
func TestEdgeCaseRestoreKeepsTaxonomy(t *testing.T) {
	src := newBus(t)
	src.Subscribe("a", func(e *Event) error { return nil })
	snap := src.Snapshot()

	dst := newBus(t)
	dst.RestoreFromSnapshot(snap)
	if names := dst.EventNames(); len(names) != 1 || names[0] != "a" {
		t.Errorf("EventNames = %v", names)
	}
	if dst.HasListeners("a") {
		t.Error("restored buckets are empty")
	}
	if dst.State().EventCount != 1 {
		t.Errorf("EventCount = %d", dst.State().EventCount)
	}
}
