package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bizradar/backend/internal/cache"
	"github.com/bizradar/backend/internal/model"
)

// fakeRunner - snapshotRunner 인터페이스 테스트 구현
type fakeRunner struct {
	snapshot *model.Snapshot
	err      error
	calls    int
}

func (f *fakeRunner) Run(ctx context.Context, entityID string, facets []model.FacetKind) (*model.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

// fakeSnapshotWriter - snapshotWriter 인터페이스 테스트 구현
type fakeSnapshotWriter struct {
	inserted []*model.Snapshot
	err      error
}

func (f *fakeSnapshotWriter) InsertSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, snap)
	return nil
}

func newTestStore() *cache.Store {
	return cache.NewStore(nil, nil, time.Hour, time.Hour, 0.92)
}

func TestAnalyzePersistsSnapshotOnMiss(t *testing.T) {
	snap := frameworkSnapshot("snap-1", 3.0)
	runner := &fakeRunner{snapshot: snap}
	writer := &fakeSnapshotWriter{}
	svc := NewOrchestrationService(runner, newTestStore(), writer)

	got, cached, err := svc.Analyze(context.Background(), "acme", []model.FacetKind{model.FacetFramework})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached {
		t.Error("first call must be a cache miss")
	}
	if got.ID != "snap-1" {
		t.Errorf("unexpected snapshot: %s", got.ID)
	}
	if len(writer.inserted) != 1 {
		t.Fatalf("expected one persisted snapshot, got %d", len(writer.inserted))
	}
}

func TestAnalyzeServesFromCache(t *testing.T) {
	runner := &fakeRunner{snapshot: frameworkSnapshot("snap-1", 3.0)}
	writer := &fakeSnapshotWriter{}
	svc := NewOrchestrationService(runner, newTestStore(), writer)
	ctx := context.Background()
	facets := []model.FacetKind{model.FacetFramework}

	if _, _, err := svc.Analyze(ctx, "acme", facets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, cached, err := svc.Analyze(ctx, "acme", facets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached {
		t.Error("second call must hit the cache")
	}
	if runner.calls != 1 {
		t.Errorf("orchestration must run once, ran %d times", runner.calls)
	}
	if len(writer.inserted) != 1 {
		t.Errorf("cache hit must not persist again, got %d inserts", len(writer.inserted))
	}
}

func TestAnalyzeErrorIsNotCached(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("all sources failed")}
	writer := &fakeSnapshotWriter{}
	svc := NewOrchestrationService(runner, newTestStore(), writer)
	ctx := context.Background()
	facets := []model.FacetKind{model.FacetFramework}

	if _, _, err := svc.Analyze(ctx, "acme", facets); err == nil {
		t.Fatal("expected error")
	}

	// 실패는 캐시되지 않으므로 다음 호출에서 다시 실행됨
	runner.err = nil
	runner.snapshot = frameworkSnapshot("snap-2", 3.0)
	got, cached, err := svc.Analyze(ctx, "acme", facets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached || got.ID != "snap-2" {
		t.Errorf("expected fresh run after failure, cached=%v id=%s", cached, got.ID)
	}
}

func TestAnalyzeContinuesWhenPersistFails(t *testing.T) {
	runner := &fakeRunner{snapshot: frameworkSnapshot("snap-1", 3.0)}
	writer := &fakeSnapshotWriter{err: fmt.Errorf("db unavailable")}
	svc := NewOrchestrationService(runner, newTestStore(), writer)

	got, _, err := svc.Analyze(context.Background(), "acme", []model.FacetKind{model.FacetFramework})
	if err != nil {
		t.Fatalf("persist failure must not fail the analysis: %v", err)
	}
	if got == nil || got.ID != "snap-1" {
		t.Errorf("expected snapshot despite persist failure, got %+v", got)
	}
}
