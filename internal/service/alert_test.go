package service

import (
	"context"
	"testing"

	"github.com/bizradar/backend/internal/model"
)

// fakeAlertStore - alertStore 인터페이스 테스트 구현
type fakeAlertStore struct {
	feedback map[string]model.FeedbackVerdict
	read     map[string]bool
	listed   string
	limit    int
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{
		feedback: make(map[string]model.FeedbackVerdict),
		read:     make(map[string]bool),
	}
}

func (f *fakeAlertStore) GetAlert(ctx context.Context, id string) (*model.Alert, error) {
	return &model.Alert{ID: id}, nil
}

func (f *fakeAlertStore) ListAlertsByMonitor(ctx context.Context, monitorID string, limit int) ([]model.Alert, error) {
	f.listed = monitorID
	f.limit = limit
	return nil, nil
}

func (f *fakeAlertStore) MarkAlertRead(ctx context.Context, id string) error {
	f.read[id] = true
	return nil
}

func (f *fakeAlertStore) SetAlertFeedback(ctx context.Context, id string, verdict model.FeedbackVerdict) error {
	f.feedback[id] = verdict
	return nil
}

func TestSubmitFeedbackValidatesVerdict(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store)
	ctx := context.Background()

	if err := svc.SubmitFeedback(ctx, "a-1", "meh"); err == nil {
		t.Fatal("expected error for unknown verdict")
	}
	if len(store.feedback) != 0 {
		t.Error("invalid verdict must not be stored")
	}

	if err := svc.SubmitFeedback(ctx, "a-1", model.FeedbackHelpful); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.feedback["a-1"] != model.FeedbackHelpful {
		t.Errorf("expected helpful verdict stored, got %q", store.feedback["a-1"])
	}
}

func TestListRequiresMonitorID(t *testing.T) {
	svc := NewAlertService(newFakeAlertStore())

	if _, err := svc.List(context.Background(), "", 10); err == nil {
		t.Fatal("expected error for empty monitor_id")
	}
}

func TestListAppliesDefaultLimit(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store)

	if _, err := svc.List(context.Background(), "mon-1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.limit != defaultAlertListLimit {
		t.Errorf("expected default limit %d, got %d", defaultAlertListLimit, store.limit)
	}
}
