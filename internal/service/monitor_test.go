package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bizradar/backend/internal/model"
)

// fakeMonitorStore - monitorStore 인터페이스 테스트 구현
type fakeMonitorStore struct {
	monitors map[string]*model.Monitor

	lastStatus   model.MonitorStatus
	lastResetArg bool
}

func newFakeMonitorStore() *fakeMonitorStore {
	return &fakeMonitorStore{monitors: make(map[string]*model.Monitor)}
}

func (f *fakeMonitorStore) InsertMonitor(ctx context.Context, m *model.Monitor) error {
	f.monitors[m.ID] = m
	return nil
}

func (f *fakeMonitorStore) GetMonitor(ctx context.Context, id string) (*model.Monitor, error) {
	m, ok := f.monitors[id]
	if !ok {
		return nil, fmt.Errorf("monitor not found: %s", id)
	}
	return m, nil
}

func (f *fakeMonitorStore) ListMonitors(ctx context.Context) ([]model.Monitor, error) {
	var out []model.Monitor
	for _, m := range f.monitors {
		if m.Status != model.MonitorDeleted {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMonitorStore) UpdateMonitorConfig(ctx context.Context, id string, cfg model.MonitorConfig) error {
	m, ok := f.monitors[id]
	if !ok {
		return fmt.Errorf("monitor not found: %s", id)
	}
	m.Config = cfg
	return nil
}

func (f *fakeMonitorStore) UpdateMonitorStatus(ctx context.Context, id string, status model.MonitorStatus, resetFailures bool) error {
	m, ok := f.monitors[id]
	if !ok {
		return fmt.Errorf("monitor not found: %s", id)
	}
	m.Status = status
	f.lastStatus = status
	f.lastResetArg = resetFailures
	if resetFailures {
		m.ConsecutiveFailures = 0
		m.LastError = nil
	}
	return nil
}

func validConfig() model.MonitorConfig {
	return model.MonitorConfig{
		Cadence:             model.CadenceDaily,
		ConfidenceThreshold: 0.5,
		EnabledFacets:       []model.FacetKind{model.FacetFramework, model.FacetTrends},
		Channels:            []string{"team-slack"},
	}
}

func TestCreateMonitor(t *testing.T) {
	store := newFakeMonitorStore()
	svc := NewMonitorService(store)

	m, err := svc.Create(context.Background(), "acme", validConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID == "" {
		t.Error("expected generated monitor id")
	}
	if m.Status != model.MonitorActive {
		t.Errorf("new monitor must be active, got %s", m.Status)
	}
	if m.NextCheckAt.IsZero() {
		t.Error("expected immediate first check scheduling")
	}
	if _, ok := store.monitors[m.ID]; !ok {
		t.Error("monitor not persisted")
	}
}

func TestCreateMonitorValidation(t *testing.T) {
	store := newFakeMonitorStore()
	svc := NewMonitorService(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		entityID string
		mutate   func(*model.MonitorConfig)
	}{
		{"empty entity", "", func(c *model.MonitorConfig) {}},
		{"bad cadence", "acme", func(c *model.MonitorConfig) { c.Cadence = "monthly" }},
		{"threshold above one", "acme", func(c *model.MonitorConfig) { c.ConfidenceThreshold = 1.5 }},
		{"no facets", "acme", func(c *model.MonitorConfig) { c.EnabledFacets = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if _, err := svc.Create(ctx, tt.entityID, cfg); err == nil {
				t.Error("expected validation error")
			}
			if len(store.monitors) != 0 {
				t.Error("invalid monitor must not be persisted")
			}
		})
	}
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	store := newFakeMonitorStore()
	svc := NewMonitorService(store)
	ctx := context.Background()

	m, err := svc.Create(ctx, "acme", validConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := validConfig()
	bad.ConfidenceThreshold = -0.1
	if _, err := svc.UpdateConfig(ctx, m.ID, bad); err == nil {
		t.Fatal("expected validation error")
	}
	if store.monitors[m.ID].Config.ConfidenceThreshold != 0.5 {
		t.Error("stored config must be unchanged after rejected update")
	}
}

func TestResumeResetsFailures(t *testing.T) {
	store := newFakeMonitorStore()
	svc := NewMonitorService(store)
	ctx := context.Background()

	m, err := svc.Create(ctx, "acme", validConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lastErr := "upstream unavailable"
	store.monitors[m.ID].Status = model.MonitorError
	store.monitors[m.ID].ConsecutiveFailures = 5
	store.monitors[m.ID].LastError = &lastErr

	if err := svc.Resume(ctx, m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := store.monitors[m.ID]
	if got.Status != model.MonitorActive {
		t.Errorf("expected active after resume, got %s", got.Status)
	}
	if got.ConsecutiveFailures != 0 || got.LastError != nil {
		t.Errorf("resume must reset failure state: %+v", got)
	}
	if !store.lastResetArg {
		t.Error("resume must request failure counter reset")
	}
}

func TestPauseKeepsFailureState(t *testing.T) {
	store := newFakeMonitorStore()
	svc := NewMonitorService(store)
	ctx := context.Background()

	m, err := svc.Create(ctx, "acme", validConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.monitors[m.ID].ConsecutiveFailures = 2

	if err := svc.Pause(ctx, m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.monitors[m.ID].Status != model.MonitorPaused {
		t.Errorf("expected paused, got %s", store.monitors[m.ID].Status)
	}
	if store.lastResetArg {
		t.Error("pause must not reset failure counter")
	}
}

func TestDeleteIsSoft(t *testing.T) {
	store := newFakeMonitorStore()
	svc := NewMonitorService(store)
	ctx := context.Background()

	m, err := svc.Create(ctx, "acme", validConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 레코드는 남고 상태만 deleted로 전환
	if _, ok := store.monitors[m.ID]; !ok {
		t.Fatal("delete must not remove the record")
	}
	if store.monitors[m.ID].Status != model.MonitorDeleted {
		t.Errorf("expected deleted status, got %s", store.monitors[m.ID].Status)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("deleted monitor must not appear in listing, got %d", len(list))
	}
}
