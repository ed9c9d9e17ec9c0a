package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAllocatorHooks{}
	a.OnAllocateStart(ctx, 27, 5)
	a.OnAllocateComplete(ctx, 27, time.Millisecond, nil)

	f := NoopFeedHooks{}
	f.OnUpdate(ctx, "nats", "elected", 10, 27, time.Millisecond)
	f.OnRejected(ctx, "http", "UNKNOWN_ENTRY")
	f.OnRetraction(ctx, "ca-12")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "assignment")
	c.OnCacheMiss(ctx, "assignment")
	c.OnCacheSet(ctx, "frame", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Allocator().(NoopAllocatorHooks); !ok {
		t.Error("Allocator() should return NoopAllocatorHooks by default")
	}
	if _, ok := Feed().(NoopFeedHooks); !ok {
		t.Error("Feed() should return NoopFeedHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customAlloc := &testAllocatorHooks{}
	SetAllocatorHooks(customAlloc)
	if Allocator() != customAlloc {
		t.Error("SetAllocatorHooks should set custom hooks")
	}

	customFeed := &testFeedHooks{}
	SetFeedHooks(customFeed)
	if Feed() != customFeed {
		t.Error("SetFeedHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Feed().(NoopFeedHooks); !ok {
		t.Error("Reset() should restore NoopFeedHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testFeedHooks{}
	SetFeedHooks(custom)
	SetFeedHooks(nil)
	if Feed() != custom {
		t.Error("SetFeedHooks(nil) should keep the current hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testFeedHooks{}
	SetFeedHooks(h)
	Feed().OnUpdate(context.Background(), "file", "leading", 1, 3, 0)
	Feed().OnRejected(context.Background(), "file", "INVALID_UPDATE")

	if h.updates != 1 || h.rejected != 1 {
		t.Errorf("updates=%d rejected=%d, want 1 and 1", h.updates, h.rejected)
	}
}

type testAllocatorHooks struct{ NoopAllocatorHooks }

type testFeedHooks struct {
	updates, rejected int
}

func (h *testFeedHooks) OnUpdate(context.Context, string, string, int, int, time.Duration) {
	h.updates++
}
func (h *testFeedHooks) OnRejected(context.Context, string, string) { h.rejected++ }
func (h *testFeedHooks) OnRetraction(context.Context, string)       {}

type testCacheHooks struct{ NoopCacheHooks }
