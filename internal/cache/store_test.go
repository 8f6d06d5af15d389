package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizradar/backend/internal/model"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	if f.err != nil {
		return nil, "fake-model", f.err
	}
	return f.vectors[text], "fake-model", nil
}

type fakeIndex struct {
	mu      sync.Mutex
	keys    map[string][]float32
	nearest string
}

func (f *fakeIndex) InsertCacheKey(ctx context.Context, key, entity string, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = make(map[string][]float32)
	}
	f.keys[key] = vector
	return nil
}

func (f *fakeIndex) NearestCacheKey(ctx context.Context, vector []float32, minSimilarity float64) (string, float64, error) {
	return f.nearest, 0.95, nil
}

func testSnapshot(entity string) *model.Snapshot {
	return &model.Snapshot{
		ID:       "snap-" + entity,
		EntityID: entity,
		Facets: map[model.FacetKind]model.TaskResult{
			model.FacetFinancial: {Status: model.StatusSuccess, Payload: model.FinancialPayload{Metrics: map[string]float64{"revenue": 1}}},
		},
		OverallConfidence: 0.5,
	}
}

func countingRun(calls *int32, entity string) RunFunc {
	return func(ctx context.Context) (*model.Snapshot, error) {
		atomic.AddInt32(calls, 1)
		return testSnapshot(entity), nil
	}
}

func TestExactHitWithinTTL(t *testing.T) {
	store := NewStore(nil, nil, time.Hour, time.Hour, 0.92)
	facets := []model.FacetKind{model.FacetFinancial}
	var calls int32

	snap1, cached1, err := store.GetOrRun(context.Background(), "Acme", facets, countingRun(&calls, "Acme"))
	if err != nil || cached1 {
		t.Fatalf("first call: err=%v cached=%v", err, cached1)
	}
	snap2, cached2, err := store.GetOrRun(context.Background(), "Acme", facets, countingRun(&calls, "Acme"))
	if err != nil || !cached2 {
		t.Fatalf("second call: err=%v cached=%v", err, cached2)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 run, got %d", calls)
	}
	if snap1.ID != snap2.ID {
		t.Fatalf("expected same snapshot from cache")
	}
}

func TestExactKeyNormalization(t *testing.T) {
	a := Key("  Tesla  Motors ", []model.FacetKind{model.FacetTrends, model.FacetResearch})
	b := Key("tesla motors", []model.FacetKind{model.FacetResearch, model.FacetTrends})
	if a != b {
		t.Fatalf("normalized keys must match: %s vs %s", a, b)
	}
	c := Key("tesla motors", []model.FacetKind{model.FacetResearch})
	if a == c {
		t.Fatalf("different facet sets must produce different keys")
	}
}

func TestTTLExpiry(t *testing.T) {
	store := NewStore(nil, nil, 10*time.Millisecond, 10*time.Millisecond, 0.92)
	facets := []model.FacetKind{model.FacetFinancial}
	var calls int32

	if _, _, err := store.GetOrRun(context.Background(), "Acme", facets, countingRun(&calls, "Acme")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	_, cached, err := store.GetOrRun(context.Background(), "Acme", facets, countingRun(&calls, "Acme"))
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Fatalf("expired entry must not be served")
	}
	if calls != 2 {
		t.Fatalf("expected 2 runs after expiry, got %d", calls)
	}
}

func TestSingleFlightCoalescing(t *testing.T) {
	store := NewStore(nil, nil, time.Hour, time.Hour, 0.92)
	facets := []model.FacetKind{model.FacetFinancial}
	var calls int32

	slowRun := func(ctx context.Context) (*model.Snapshot, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return testSnapshot("Acme"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := store.GetOrRun(context.Background(), "Acme", facets, slowRun); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected concurrent requests coalesced to 1 run, got %d", got)
	}
}

func TestSemanticTierHit(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"tesla":     {1, 0},
		"tesla inc": {0.99, 0.01},
	}}
	index := &fakeIndex{}
	store := NewStore(embedder, index, time.Hour, time.Hour, 0.92)
	facets := []model.FacetKind{model.FacetFinancial}
	var calls int32

	// 원본 엔티티로 캐시 적재
	if _, _, err := store.GetOrRun(context.Background(), "Tesla", facets, countingRun(&calls, "Tesla")); err != nil {
		t.Fatal(err)
	}
	index.nearest = Key("Tesla", facets)

	// 근사 중복 엔티티는 semantic tier에서 서빙되어야 함
	snap, cached, err := store.GetOrRun(context.Background(), "Tesla Inc", facets, countingRun(&calls, "Tesla Inc"))
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Fatalf("expected semantic cache hit")
	}
	if snap.EntityID != "Tesla" {
		t.Fatalf("expected cached Tesla snapshot, got %s", snap.EntityID)
	}
	if calls != 1 {
		t.Fatalf("expected 1 run total, got %d", calls)
	}
}

func TestEmbeddingFailureDegradesToRun(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("quota exceeded")}
	store := NewStore(embedder, &fakeIndex{}, time.Hour, time.Hour, 0.92)
	var calls int32

	_, cached, err := store.GetOrRun(context.Background(), "Acme", []model.FacetKind{model.FacetFinancial}, countingRun(&calls, "Acme"))
	if err != nil {
		t.Fatalf("embedding failure must not fail the request: %v", err)
	}
	if cached || calls != 1 {
		t.Fatalf("expected fresh run, cached=%v calls=%d", cached, calls)
	}
}
