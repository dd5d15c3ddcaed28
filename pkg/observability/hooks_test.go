package observability

import (
	"context"
	"testing"
	"time"
)

// recordingGraphHooks counts received events.
type recordingGraphHooks struct {
	NoopGraphHooks
	walks   int
	layouts int
	renders int
}

func (r *recordingGraphHooks) OnWalkComplete(context.Context, string, int, time.Duration, error) {
	r.walks++
}

func (r *recordingGraphHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {
	r.layouts++
}

func (r *recordingGraphHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
	r.renders++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (r *recordingCacheHooks) OnCacheHit(context.Context, string)  { r.hits++ }
func (r *recordingCacheHooks) OnCacheMiss(context.Context, string) { r.misses++ }

func TestGraphHooksRegistration(t *testing.T) {
	defer Reset()

	rec := &recordingGraphHooks{}
	SetGraphHooks(rec)

	ctx := context.Background()
	Graph().OnWalkComplete(ctx, "/repo", 10, time.Millisecond, nil)
	Graph().OnLayoutComplete(ctx, 10, 2, time.Millisecond, nil)
	Graph().OnRenderComplete(ctx, "text", 512, time.Millisecond, nil)

	if rec.walks != 1 || rec.layouts != 1 || rec.renders != 1 {
		t.Errorf("events = %d/%d/%d, want 1/1/1", rec.walks, rec.layouts, rec.renders)
	}
}

func TestCacheHooksRegistration(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheMiss(ctx, "graph")

	if rec.hits != 1 || rec.misses != 2 {
		t.Errorf("hits/misses = %d/%d, want 1/2", rec.hits, rec.misses)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingGraphHooks{}
	SetGraphHooks(rec)
	SetGraphHooks(nil)

	Graph().OnWalkComplete(context.Background(), "/repo", 1, 0, nil)
	if rec.walks != 1 {
		t.Error("nil registration replaced the active hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	rec := &recordingGraphHooks{}
	SetGraphHooks(rec)
	Reset()

	Graph().OnWalkComplete(context.Background(), "/repo", 1, 0, nil)
	if rec.walks != 0 {
		t.Error("Reset did not restore no-op hooks")
	}
}
