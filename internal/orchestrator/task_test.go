package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bizradar/backend/internal/model"
)

type fakeTask struct {
	name  string
	facet model.FacetKind
	run   func(ctx context.Context, in Input) (model.FacetPayload, error)
}

func (f *fakeTask) Name() string           { return f.name }
func (f *fakeTask) Facet() model.FacetKind { return f.facet }
func (f *fakeTask) Run(ctx context.Context, in Input) (model.FacetPayload, error) {
	return f.run(ctx, in)
}

func TestExecuteSuccess(t *testing.T) {
	task := &fakeTask{
		name:  "ok",
		facet: model.FacetTrends,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			return model.TrendsPayload{Trends: []string{"ev"}}, nil
		},
	}

	res := NewExecutor().Execute(context.Background(), task, Input{EntityID: "acme"}, time.Second)
	if res.Status != model.StatusSuccess {
		t.Fatalf("expected success, got %s (error=%s)", res.Status, res.Error)
	}
	if res.Payload == nil {
		t.Fatalf("expected payload")
	}
}

func TestExecuteTimeout(t *testing.T) {
	task := &fakeTask{
		name:  "slow",
		facet: model.FacetResearch,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			select {
			case <-time.After(5 * time.Second):
				return model.ResearchPayload{}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}

	res := NewExecutor().Execute(context.Background(), task, Input{EntityID: "acme"}, 20*time.Millisecond)
	if res.Status != model.StatusTimedOut {
		t.Fatalf("expected timed_out, got %s", res.Status)
	}
	if res.Payload != nil {
		t.Fatalf("expected nil payload on timeout")
	}
}

func TestExecuteFailure(t *testing.T) {
	task := &fakeTask{
		name:  "broken",
		facet: model.FacetFinancial,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			return nil, fmt.Errorf("upstream 503")
		},
	}

	res := NewExecutor().Execute(context.Background(), task, Input{EntityID: "acme"}, time.Second)
	if res.Status != model.StatusFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	if res.Error != "upstream 503" {
		t.Fatalf("expected error message preserved, got %q", res.Error)
	}
}

func TestExecutePanicRecovered(t *testing.T) {
	task := &fakeTask{
		name:  "panicky",
		facet: model.FacetFinancial,
		run: func(ctx context.Context, in Input) (model.FacetPayload, error) {
			panic("nil map write")
		},
	}

	res := NewExecutor().Execute(context.Background(), task, Input{EntityID: "acme"}, time.Second)
	if res.Status != model.StatusFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	if res.Error == "" {
		t.Fatalf("expected panic message in error")
	}
}
