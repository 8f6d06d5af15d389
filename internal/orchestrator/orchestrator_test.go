package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bizradar/backend/internal/model"
)

func gatherTask(facet model.FacetKind, payload model.FacetPayload, err error) Task {
	return &fakeTask{
		name:  string(facet),
		facet: facet,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			return payload, err
		},
	}
}

func TestRunPartialFailure(t *testing.T) {
	// Phase 1 Task 3개 중 1개 타임아웃: Snapshot은 생성되고 신뢰도는 2개 성공 기준
	slow := &fakeTask{
		name:  "research",
		facet: model.FacetResearch,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	tasks := []Task{
		slow,
		gatherTask(model.FacetTrends, model.TrendsPayload{Trends: []string{"ai"}}, nil),
		gatherTask(model.FacetFinancial, model.FinancialPayload{Metrics: map[string]float64{"revenue": 10}}, nil),
	}

	o := New(NewExecutor(), tasks, nil, 30*time.Millisecond)
	snap, err := o.Run(context.Background(), "acme", []model.FacetKind{model.FacetResearch, model.FacetTrends, model.FacetFinancial})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.SuccessCount() != 2 {
		t.Fatalf("expected 2 successes, got %d", snap.SuccessCount())
	}
	if snap.Facets[model.FacetResearch].Status != model.StatusTimedOut {
		t.Fatalf("expected research timed_out, got %s", snap.Facets[model.FacetResearch].Status)
	}
	want := singleSourceBase + corroborationBonus
	if snap.OverallConfidence != want {
		t.Fatalf("expected confidence %v, got %v", want, snap.OverallConfidence)
	}
}

func TestRunTotalFailureStillProducesSnapshot(t *testing.T) {
	tasks := []Task{
		gatherTask(model.FacetTrends, nil, fmt.Errorf("down")),
		gatherTask(model.FacetFinancial, nil, fmt.Errorf("down")),
	}

	o := New(NewExecutor(), tasks, nil, time.Second)
	snap, err := o.Run(context.Background(), "acme", []model.FacetKind{model.FacetTrends, model.FacetFinancial})
	if err != nil {
		t.Fatalf("total failure must not surface an error, got %v", err)
	}
	if snap.OverallConfidence != confidenceFloor {
		t.Fatalf("expected floor confidence %v, got %v", confidenceFloor, snap.OverallConfidence)
	}
}

func TestRunScoringSkippedWithoutSources(t *testing.T) {
	scoring := &fakeTask{
		name:  "framework",
		facet: model.FacetFramework,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			t.Fatal("scoring task must not run when no source facet succeeded")
			return nil, nil
		},
	}
	tasks := []Task{gatherTask(model.FacetTrends, nil, fmt.Errorf("down"))}

	o := New(NewExecutor(), tasks, scoring, time.Second)
	snap, err := o.Run(context.Background(), "acme", []model.FacetKind{model.FacetTrends, model.FacetFramework})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.Facets[model.FacetFramework].Status != model.StatusFailed {
		t.Fatalf("expected framework failed, got %s", snap.Facets[model.FacetFramework].Status)
	}
}

func TestRunScoringReceivesOnlySuccessfulFacets(t *testing.T) {
	var received map[model.FacetKind]model.TaskResult
	scoring := &fakeTask{
		name:  "framework",
		facet: model.FacetFramework,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			received = in.Facets
			return model.FrameworkPayload{Forces: map[string]float64{"rivalry": 5}}, nil
		},
	}
	tasks := []Task{
		gatherTask(model.FacetTrends, model.TrendsPayload{Trends: []string{"ai"}}, nil),
		gatherTask(model.FacetFinancial, nil, fmt.Errorf("down")),
	}

	o := New(NewExecutor(), tasks, scoring, time.Second)
	snap, err := o.Run(context.Background(), "acme", []model.FacetKind{model.FacetTrends, model.FacetFinancial, model.FacetFramework})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := received[model.FacetFinancial]; ok {
		t.Fatalf("failed facet must not be passed to scoring")
	}
	if _, ok := received[model.FacetTrends]; !ok {
		t.Fatalf("successful facet missing from scoring input")
	}
	if snap.Facets[model.FacetFramework].Status != model.StatusSuccess {
		t.Fatalf("expected framework success, got %s", snap.Facets[model.FacetFramework].Status)
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	o := New(NewExecutor(), nil, nil, time.Second)

	if _, err := o.Run(context.Background(), "", []model.FacetKind{model.FacetTrends}); err == nil {
		t.Fatalf("expected error for empty entity")
	}
	if _, err := o.Run(context.Background(), "acme", nil); err == nil {
		t.Fatalf("expected error for empty facet list")
	}
	if _, err := o.Run(context.Background(), "acme", []model.FacetKind{"weather"}); err == nil {
		t.Fatalf("expected error for unknown facet")
	}
}
