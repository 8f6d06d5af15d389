package detector

import (
	"testing"
	"time"

	"github.com/bizradar/backend/internal/model"
)

func snapshotWith(facets map[model.FacetKind]model.FacetPayload) *model.Snapshot {
	results := make(map[model.FacetKind]model.TaskResult, len(facets))
	for kind, payload := range facets {
		results[kind] = model.TaskResult{Status: model.StatusSuccess, Payload: payload}
	}
	return &model.Snapshot{
		ID:        "snap",
		EntityID:  "acme",
		CreatedAt: time.Now(),
		Facets:    results,
	}
}

func fullPayloads() map[model.FacetKind]model.FacetPayload {
	return map[model.FacetKind]model.FacetPayload{
		model.FacetFramework: model.FrameworkPayload{Forces: map[string]float64{"rivalry": 3.0, "buyer_power": 5.0}},
		model.FacetTrends:    model.TrendsPayload{Trends: []string{"ev", "solar"}, Competitors: []string{"globex"}},
		model.FacetFinancial: model.FinancialPayload{Metrics: map[string]float64{"revenue": 100.0}},
		model.FacetResearch:  model.ResearchPayload{Sentiment: "neutral", Narrative: "The company held a meeting."},
	}
}

func TestDetectIdenticalSnapshots(t *testing.T) {
	d := New(DefaultConfig())
	prev := snapshotWith(fullPayloads())
	curr := snapshotWith(fullPayloads())

	if changes := d.Detect(prev, curr); len(changes) != 0 {
		t.Fatalf("expected no changes, got %d: %+v", len(changes), changes)
	}
}

func TestForceDeltaThresholdBoundary(t *testing.T) {
	d := New(DefaultConfig())
	prev := snapshotWith(fullPayloads())

	tests := []struct {
		name    string
		rivalry float64
		want    int
	}{
		{name: "below-threshold", rivalry: 3.9, want: 0},
		{name: "exactly-threshold", rivalry: 4.0, want: 0},
		{name: "above-threshold", rivalry: 4.2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloads := fullPayloads()
			payloads[model.FacetFramework] = model.FrameworkPayload{
				Forces: map[string]float64{"rivalry": tt.rivalry, "buyer_power": 5.0},
			}
			changes := d.Detect(prev, snapshotWith(payloads))
			if len(changes) != tt.want {
				t.Fatalf("expected %d changes, got %d: %+v", tt.want, len(changes), changes)
			}
			if tt.want == 1 {
				if changes[0].Dimension != model.DimensionForces {
					t.Fatalf("expected forces dimension, got %s", changes[0].Dimension)
				}
				if changes[0].Magnitude <= 1.0 {
					t.Fatalf("expected magnitude above threshold, got %v", changes[0].Magnitude)
				}
			}
		})
	}
}

func TestListMembershipChanges(t *testing.T) {
	d := New(DefaultConfig())
	prev := snapshotWith(fullPayloads())

	payloads := fullPayloads()
	payloads[model.FacetTrends] = model.TrendsPayload{
		Trends:      []string{"solar", "hydrogen"}, // "ev" 소멸, "hydrogen" 등장
		Competitors: []string{"globex"},
	}
	changes := d.Detect(prev, snapshotWith(payloads))

	if len(changes) != 2 {
		t.Fatalf("expected 2 changes (one appeared, one disappeared), got %d: %+v", len(changes), changes)
	}
	for _, c := range changes {
		if c.Dimension != model.DimensionTrends {
			t.Fatalf("expected trends dimension, got %s", c.Dimension)
		}
	}
}

func TestListReorderEmitsNothing(t *testing.T) {
	d := New(DefaultConfig())
	prev := snapshotWith(fullPayloads())

	payloads := fullPayloads()
	payloads[model.FacetTrends] = model.TrendsPayload{
		Trends:      []string{"solar", "ev"}, // 순서만 변경
		Competitors: []string{"globex"},
	}
	if changes := d.Detect(prev, snapshotWith(payloads)); len(changes) != 0 {
		t.Fatalf("reordering must not emit changes, got %+v", changes)
	}
}

func TestFinancialPercentThreshold(t *testing.T) {
	d := New(DefaultConfig())
	prev := snapshotWith(fullPayloads())

	tests := []struct {
		name    string
		revenue float64
		want    int
	}{
		{name: "below", revenue: 105.0, want: 0},
		{name: "exactly", revenue: 110.0, want: 0},
		{name: "above", revenue: 115.0, want: 1},
		{name: "drop-above", revenue: 85.0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloads := fullPayloads()
			payloads[model.FacetFinancial] = model.FinancialPayload{Metrics: map[string]float64{"revenue": tt.revenue}}
			changes := d.Detect(prev, snapshotWith(payloads))
			if len(changes) != tt.want {
				t.Fatalf("expected %d changes, got %d: %+v", tt.want, len(changes), changes)
			}
		})
	}
}

func TestMissingFacetSkipsDimension(t *testing.T) {
	d := New(DefaultConfig())
	prev := snapshotWith(fullPayloads())

	// 현재 Snapshot에서 financial facet이 실패한 경우: financial 차원만 건너뜀
	payloads := fullPayloads()
	delete(payloads, model.FacetFinancial)
	curr := snapshotWith(payloads)
	curr.Facets[model.FacetFinancial] = model.TaskResult{Status: model.StatusFailed, Error: "down"}

	if changes := d.Detect(prev, curr); len(changes) != 0 {
		t.Fatalf("failed facet must not produce changes, got %+v", changes)
	}
}

func TestComparatorPanicIsolated(t *testing.T) {
	panicking := comparator{
		dimension: model.DimensionForces,
		compare: func(prev, curr *model.Snapshot) []model.Change {
			panic("boom")
		},
	}
	if out := runComparator(panicking, &model.Snapshot{}, &model.Snapshot{}); out != nil {
		t.Fatalf("expected nil changes from panicking comparator, got %+v", out)
	}
}
