package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "diagram.json")
	p.OnLoadComplete(ctx, "diagram.json", 3, 2, time.Second, nil)
	p.OnResolve(ctx, 1, 1)
	p.OnLayout(ctx, 2, 8, time.Millisecond)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "id", "POST", "/render")
	s.OnResponse(ctx, "id", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Reset() should restore NoopServerHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep the current hooks")
	}
}

func TestHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testPipelineHooks{}
	SetPipelineHooks(h)

	Pipeline().OnResolve(context.Background(), 2, 3)
	if h.missing != 2 || h.skipped != 3 {
		t.Errorf("OnResolve got missing=%d skipped=%d", h.missing, h.skipped)
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	missing, skipped int
}

func (h *testPipelineHooks) OnResolve(_ context.Context, missing, skipped int) {
	h.missing, h.skipped = missing, skipped
}

type testServerHooks struct {
	NoopServerHooks
}
